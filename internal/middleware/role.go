package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stagegear/internal/domain"
	"stagegear/internal/pkg/response"
)

// RequireRole gates a route group behind a minimum role. Roles are
// hierarchical: viewer < operator < manager < admin.
func RequireRole(min domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if !role.Valid() {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if !role.AtLeast(min) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly requires the admin role.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
