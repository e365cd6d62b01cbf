package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller verified by AuthRequired.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the caller holds role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IdentityFrom returns the caller stored by AuthRequired. It reports false on
// routes that are not behind authentication.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Identity{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Identity{}, false
	}

	id := Identity{UserID: userID}
	if roles, ok := c.Get(ContextRolesKey); ok {
		id.Roles, _ = roles.([]string)
	}
	return id, true
}

// RequireIdentity returns the caller, or aborts with 401 and reports false.
func RequireIdentity(c *gin.Context) (Identity, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return id, ok
}

// RequestIDFrom returns the request ID assigned by the RequestID middleware.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}
