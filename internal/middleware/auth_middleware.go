package middleware

import (
	"net/http"
	"strings"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key holding the authenticated principal.
const PrincipalKey = "principal"

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(PrincipalKey, models.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
			StaffID:  claims.StaffID,
		})

		c.Next()
	}
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// It checks if the principal's role is one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(PrincipalKey)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "No authenticated principal. Ensure AuthMiddleware runs first."})
			c.Abort()
			return
		}

		principal, ok := value.(models.Principal)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Principal in context has unexpected type"})
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if strings.EqualFold(principal.Role, role) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource. Required roles: " + strings.Join(allowedRoles, ", ")})
		c.Abort()
	}
}
