package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	domain "file-storage-api/internal/domain/user"
	userDTO "file-storage-api/internal/interface/api/rest/dto/user"
)

type FakeUserService struct {
	FindUserByIDFunc func(ctx context.Context, id domain.ID) (*domain.User, error)
	FindUsersFunc    func(ctx context.Context) (domain.Users, error)
	UpdateRoleFunc   func(ctx context.Context, actor ports.Identity, id domain.ID, role domain.Role) (*domain.User, error)
	DeleteUserFunc   func(ctx context.Context, actor ports.Identity, id domain.ID) error
}

func (f *FakeUserService) FindUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, id)
}

func (f *FakeUserService) FindUsers(ctx context.Context) (domain.Users, error) {
	if f.FindUsersFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUsersFunc(ctx)
}

func (f *FakeUserService) UpdateRole(ctx context.Context, actor ports.Identity, id domain.ID, role domain.Role) (*domain.User, error) {
	if f.UpdateRoleFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UpdateRoleFunc(ctx, actor, id, role)
}

func (f *FakeUserService) DeleteUser(ctx context.Context, actor ports.Identity, id domain.ID) error {
	if f.DeleteUserFunc == nil {
		return errors.New("not used")
	}
	return f.DeleteUserFunc(ctx, actor, id)
}

func setupRouterUC(t *testing.T, us ports.UserService) *gin.Engine {
	t.Helper()
	r := newTestRouter(t)
	NewUserController(r, FakeGate{}, us, zap.NewNop())
	return r
}

func TestUserController_RequiresAdmin(t *testing.T) {
	us := &FakeUserService{
		FindUsersFunc: func(context.Context) (domain.Users, error) { return domain.Users{}, nil },
	}
	r := setupRouterUC(t, us)

	assert.Equal(t, http.StatusUnauthorized, doReq(t, r, http.MethodGet, RouteUsers, "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doReq(t, r, http.MethodGet, RouteUsers, "forged", nil).Code)
	assert.Equal(t, http.StatusForbidden, doReq(t, r, http.MethodGet, RouteUsers, aliceToken, nil).Code)
	assert.Equal(t, http.StatusOK, doReq(t, r, http.MethodGet, RouteUsers, adminToken, nil).Code)
}

func TestUserController_GetUsersHandler(t *testing.T) {
	us := &FakeUserService{
		FindUsersFunc: func(context.Context) (domain.Users, error) {
			return domain.Users{
				{ID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleUser},
				{ID: 9, Username: "root", Email: "root@example.com", Role: domain.RoleAdmin},
			}, nil
		},
	}
	r := setupRouterUC(t, us)

	rr := doReq(t, r, http.MethodGet, RouteUsers, adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var data userDTO.UsersData
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	require.Len(t, data.Users, 2)
	assert.Equal(t, "admin", data.Users[1].Role)
}

func TestUserController_GetUserHandler(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"found", "/api/v1/users/1", nil, http.StatusOK},
		{"missing", "/api/v1/users/2", apperr.ErrNotFound, http.StatusNotFound},
		{"bad id", "/api/v1/users/x", nil, http.StatusBadRequest},
		{"store failure", "/api/v1/users/1", apperr.Internal(errors.New("db")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			us := &FakeUserService{
				FindUserByIDFunc: func(_ context.Context, id domain.ID) (*domain.User, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.User{ID: id, Username: "alice", Role: domain.RoleUser}, nil
				},
			}
			r := setupRouterUC(t, us)

			rr := doReq(t, r, http.MethodGet, tt.path, adminToken, nil)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
		})
	}
}

func TestUserController_UpdateRoleHandler(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		err      error
		wantCode int
	}{
		{"promoted", userDTO.RoleRequest{Role: "admin"}, nil, http.StatusOK},
		{"missing role", userDTO.RoleRequest{}, nil, http.StatusBadRequest},
		{"invalid json", "{", nil, http.StatusBadRequest},
		{"unknown role", userDTO.RoleRequest{Role: "owner"}, apperr.NewValidation("role", "must be user or admin"), http.StatusBadRequest},
		{"own role", userDTO.RoleRequest{Role: "user"}, apperr.NewValidation("id", "cannot change your own role"), http.StatusBadRequest},
		{"missing user", userDTO.RoleRequest{Role: "admin"}, apperr.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			us := &FakeUserService{
				UpdateRoleFunc: func(_ context.Context, actor ports.Identity, id domain.ID, role domain.Role) (*domain.User, error) {
					assert.Equal(t, admin, actor)
					assert.Equal(t, domain.ID(1), id)
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.User{ID: id, Username: "alice", Role: role}, nil
				},
			}
			r := setupRouterUC(t, us)

			rr := doReq(t, r, http.MethodPut, "/api/v1/users/1/role", adminToken, tt.body)
			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			var data userDTO.UserData
			require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
			assert.Equal(t, "admin", data.User.Role)
		})
	}
}

func TestUserController_DeleteUserHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"deleted", nil, http.StatusOK},
		{"self", apperr.NewValidation("id", "cannot delete your own account"), http.StatusBadRequest},
		{"missing", apperr.ErrNotFound, http.StatusNotFound},
		{"tx failure", apperr.Internal(errors.New("tx")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			us := &FakeUserService{
				DeleteUserFunc: func(_ context.Context, actor ports.Identity, id domain.ID) error {
					assert.Equal(t, admin, actor)
					assert.Equal(t, domain.ID(4), id)
					return tt.err
				},
			}
			r := setupRouterUC(t, us)

			rr := doReq(t, r, http.MethodDelete, "/api/v1/users/4", adminToken, nil)
			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCode == http.StatusOK, decode(t, rr).Success)
		})
	}
}
