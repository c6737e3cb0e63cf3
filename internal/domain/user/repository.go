package user

import (
	"context"
)

// Repository returns apperr.ErrNotFound for missing rows and apperr.ErrConflict
// for duplicate usernames or emails.
type Repository interface {
	FetchUserByID(ctx context.Context, id ID) (*User, error)
	FetchUserByUsername(ctx context.Context, username string) (*User, error)
	FetchUsers(ctx context.Context) (Users, error)
	CreateUser(ctx context.Context, req User) (*User, error)
	UpdateRole(ctx context.Context, id ID, role Role) (*User, error)
	DeleteUser(ctx context.Context, id ID) error
	// LockUser takes a row lock on the user until the surrounding transaction
	// ends. Outside a transaction it only checks existence.
	LockUser(ctx context.Context, id ID) error
}
