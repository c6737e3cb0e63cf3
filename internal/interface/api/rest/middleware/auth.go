package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/user"
	"file-storage-api/internal/interface/api/rest/dto"
)

const CtxIdentity = "identity"

// Auth resolves the bearer token into a ports.Identity stored under
// CtxIdentity.
func Auth(gate ports.AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				dto.Fail("missing Authorization header", nil),
			)
			return
		}

		scheme, tokenStr, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				dto.Fail("invalid token format", nil),
			)
			return
		}

		id, err := gate.Authenticate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				dto.Fail("invalid token", nil),
			)
			return
		}

		c.Set(CtxIdentity, id)

		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(gate ports.AccessGate, role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail("unauthenticated", nil))
			return
		}
		if err := gate.RequireRole(id, role); err != nil {
			c.AbortWithStatusJSON(
				http.StatusForbidden,
				dto.Fail(role.String()+" access required", nil),
			)
			return
		}

		c.Next()
	}
}

func Identity(c *gin.Context) (ports.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return ports.Identity{}, false
	}
	id, ok := v.(ports.Identity)
	return id, ok
}
