package middleware

import (
	"net/http"
	"strings"

	"curtain_shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

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

		tokenString := parts[1]
		claims, err := utils.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		// Set user information in the context for downstream handlers
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("isStaff", claims.IsStaff)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user from the Authorization header when
// one is present but lets anonymous requests through. Used on checkout routes
// where guest orders are allowed.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Next()
			return
		}
		if claims, err := utils.ValidateAccessToken(parts[1]); err == nil {
			c.Set("userID", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("isStaff", claims.IsStaff)
		}
		c.Next()
	}
}

// StaffOnlyMiddleware creates a Gin middleware that only lets staff accounts
// through. It relies on AuthMiddleware having populated the context first.
func StaffOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isStaffRaw, exists := c.Get("isStaff")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff flag not found in token claims. Ensure AuthMiddleware runs first."})
			c.Abort()
			return
		}

		isStaff, ok := isStaffRaw.(bool)
		if !ok || !isStaff {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource. Staff access required."})
			c.Abort()
			return
		}

		c.Next()
	}
}
