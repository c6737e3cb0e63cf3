package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/interface/api/rest/dto"
	userDTO "file-storage-api/internal/interface/api/rest/dto/user"
	"file-storage-api/internal/interface/api/rest/middleware"
	"file-storage-api/internal/interface/api/rest/validator"
)

type UserController struct {
	userService ports.UserService
	logger      *zap.Logger
}

// NewUserController registers the admin-only account management routes.
func NewUserController(
	r *gin.Engine,
	gate ports.AccessGate,
	userService ports.UserService,
	logger *zap.Logger,
) *UserController {
	uc := &UserController{
		userService: userService,
		logger:      logger,
	}

	admin := []gin.HandlerFunc{middleware.Auth(gate), middleware.RequireRole(gate, user.RoleAdmin)}
	r.GET(RouteUsers, append(admin, uc.GetUsersHandler)...)
	r.GET(RouteUser, append(admin, uc.GetUserHandler)...)
	r.PUT(RouteUserRole, append(admin, uc.UpdateRoleHandler)...)
	r.DELETE(RouteUser, append(admin, uc.DeleteUserHandler)...)

	return uc
}

func (uc *UserController) GetUsersHandler(c *gin.Context) {
	users, err := uc.userService.FindUsers(c.Request.Context())
	if err != nil {
		writeError(c, uc.logger, "FindUsers", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Users retrieved successfully", userDTO.UsersData{
		Users: userDTO.ToResponseUsers(users),
	}))
}

func (uc *UserController) GetUserHandler(c *gin.Context) {
	id, ok := validator.ParseID(c.Param("user_id"))
	if !ok {
		badRequest(c, "user_id must be a positive integer", nil)
		return
	}

	u, err := uc.userService.FindUserByID(c.Request.Context(), user.ID(id))
	if err != nil {
		writeError(c, uc.logger, "FindUserByID", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("User retrieved successfully", userDTO.UserData{
		User: userDTO.ToResponseUser(*u),
	}))
}

func (uc *UserController) UpdateRoleHandler(c *gin.Context) {
	actor, _ := middleware.Identity(c)

	id, ok := validator.ParseID(c.Param("user_id"))
	if !ok {
		badRequest(c, "user_id must be a positive integer", nil)
		return
	}

	var req userDTO.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json", nil)
		return
	}
	if req.Role == "" {
		badRequest(c, "role is required", map[string]string{"role": "role is required"})
		return
	}

	u, err := uc.userService.UpdateRole(c.Request.Context(), actor, user.ID(id), user.Role(req.Role))
	if err != nil {
		writeError(c, uc.logger, "UpdateRole", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("User role updated successfully", userDTO.UserData{
		User: userDTO.ToResponseUser(*u),
	}))
}

func (uc *UserController) DeleteUserHandler(c *gin.Context) {
	actor, _ := middleware.Identity(c)

	id, ok := validator.ParseID(c.Param("user_id"))
	if !ok {
		badRequest(c, "user_id must be a positive integer", nil)
		return
	}

	if err := uc.userService.DeleteUser(c.Request.Context(), actor, user.ID(id)); err != nil {
		writeError(c, uc.logger, "DeleteUser", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("User deleted successfully", nil))
}
