package ports

import (
	"context"

	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/token"
)

type TokenAuthority interface {
	ClaimsFor(u *user.User) token.Claims
	Issue(c token.Claims) (string, error)
	Verify(tokenStr string) (*token.Claims, error)
}

type Auth interface {
	Login(ctx context.Context, username, password string) (string, *user.User, error)
	Register(ctx context.Context, username, email, password string) (*user.User, error)
	Refresh(claims *token.Claims) (string, error)
}

// Identity is the caller as reconstructed from a verified token. It trusts the
// signature, not the users table, so it can lag behind account changes.
type Identity struct {
	UserID   user.ID
	Username string
	Role     user.Role
}

func (i Identity) IsAdmin() bool { return i.Role == user.RoleAdmin }

type AccessGate interface {
	Authenticate(tokenStr string) (Identity, error)
	RequireRole(id Identity, role user.Role) error
	RequireOwnerOrAdmin(id Identity, ownerID user.ID) error
}
