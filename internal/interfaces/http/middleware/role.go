package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/interfaces/http/dto"
)

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, identity.Role(claims.Role)) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Your role does not allow this action")
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(identity.RoleAdmin)
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin)
}
