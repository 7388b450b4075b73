package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole aborts unless JWTAuthMiddleware set one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied for role '" + role + "'"})
	}
}
