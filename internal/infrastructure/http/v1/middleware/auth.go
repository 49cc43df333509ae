package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/actor"
	"stockbook/internal/core/apperror"
)

// TokenValidator validates an access token and returns the caller.
type TokenValidator interface {
	ValidateToken(tokenString string) (*actor.Actor, error)
}

// Auth middleware validates JWT tokens and populates the actor context.
// Every domain read and write downstream is scoped to this actor.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		a, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := actor.WithActor(c.Request.Context(), a)
		c.Request = c.Request.WithContext(ctx)

		// Store in gin context for easy access
		c.Set("actor_id", a.ID.String())

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
