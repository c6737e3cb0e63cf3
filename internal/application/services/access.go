package services

import (
	"fmt"
	"strings"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
)

type AccessGate struct {
	tokens ports.TokenAuthority
}

func NewAccessGate(tokens ports.TokenAuthority) ports.AccessGate {
	return &AccessGate{tokens: tokens}
}

// Authenticate turns a bearer token into an Identity. Every failure is
// ErrUnauthenticated.
func (g *AccessGate) Authenticate(tokenStr string) (ports.Identity, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return ports.Identity{}, fmt.Errorf("%w: missing token", apperr.ErrUnauthenticated)
	}

	claims, err := g.tokens.Verify(tokenStr)
	if err != nil {
		return ports.Identity{}, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return ports.Identity{}, fmt.Errorf("%w: malformed claims", apperr.ErrUnauthenticated)
	}

	return ports.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// RequireRole lets admins through for any role.
func (g *AccessGate) RequireRole(id ports.Identity, role user.Role) error {
	if id.Role == role || id.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: %s role required", apperr.ErrForbidden, role)
}

func (g *AccessGate) RequireOwnerOrAdmin(id ports.Identity, ownerID user.ID) error {
	if id.UserID == ownerID || id.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: not the owner", apperr.ErrForbidden)
}
