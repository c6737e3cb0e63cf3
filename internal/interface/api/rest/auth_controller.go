package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/infrastructure/token"
	"file-storage-api/internal/interface/api/rest/dto"
	"file-storage-api/internal/interface/api/rest/dto/auth"
	userDTO "file-storage-api/internal/interface/api/rest/dto/user"
	"file-storage-api/internal/interface/api/rest/middleware"
	"file-storage-api/internal/interface/api/rest/validator"
)

const tokenType = "Bearer"

type AuthController struct {
	logger      *zap.Logger
	authService ports.Auth
}

func NewAuthController(
	r *gin.Engine,
	logger *zap.Logger,
	gate ports.AccessGate,
	authService ports.Auth,
) *AuthController {
	ac := &AuthController{
		logger:      logger,
		authService: authService,
	}

	r.POST(RouteLogin, ac.LoginHandler)
	r.POST(RouteRegister, ac.RegisterHandler)
	r.POST(RouteRefresh, middleware.Auth(gate), ac.RefreshHandler)

	return ac
}

func (ac *AuthController) LoginHandler(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json", nil)
		return
	}

	if errs := validator.ValidateLogin(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	tok, u, err := ac.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, ac.logger, "Login", err)
		return
	}

	resp := userDTO.ToResponseUser(*u)
	c.JSON(http.StatusOK, dto.OK("Login successful", auth.TokenData{
		Token:     tok,
		TokenType: tokenType,
		User:      &resp,
	}))
}

func (ac *AuthController) RegisterHandler(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json", nil)
		return
	}

	if errs := validator.ValidateRegister(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	u, err := ac.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, ac.logger, "Register", err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("User registered successfully", userDTO.UserData{
		User: userDTO.ToResponseUser(*u),
	}))
}

func (ac *AuthController) RefreshHandler(c *gin.Context) {
	id, _ := middleware.Identity(c)

	tok, err := ac.authService.Refresh(&token.Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
	})
	if err != nil {
		writeError(c, ac.logger, "Refresh", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK("Token refreshed", auth.TokenData{
		Token:     tok,
		TokenType: tokenType,
	}))
}
