package ports

import (
	"context"

	"file-storage-api/internal/domain/user"
)

type UserService interface {
	FindUserByID(ctx context.Context, id user.ID) (*user.User, error)
	FindUsers(ctx context.Context) (user.Users, error)
	UpdateRole(ctx context.Context, actor Identity, id user.ID, role user.Role) (*user.User, error)
	DeleteUser(ctx context.Context, actor Identity, id user.ID) error
}
