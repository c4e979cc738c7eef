package middleware

import (
	"net/http"
	"strings"

	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token and stores the actor's
// identity on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setActor(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the actor when a bearer token is present
// but lets anonymous requests through. Read-only catalog and review routes
// are public; their handlers never look at the actor.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		if claims, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
			setActor(c, claims)
		}

		c.Next()
	}
}

// AdminMiddleware passes admins and superusers only. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			c.Abort()
			return
		}

		if !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func setActor(c *gin.Context, claims *utils.Claims) {
	actor := &models.User{
		ID:          claims.UserID,
		Username:    claims.Username,
		Role:        claims.Role,
		IsSuperuser: claims.IsSuperuser,
	}
	c.Set("actor", actor)
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
}

// Actor returns the authenticated user or nil for anonymous requests.
func Actor(c *gin.Context) *models.User {
	value, exists := c.Get("actor")
	if !exists {
		return nil
	}
	actor, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return actor
}
