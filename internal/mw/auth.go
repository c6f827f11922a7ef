package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking-backend/internal/auth"
	"hotel-booking-backend/internal/booking"
)

const actorKey = "actor"

// Auth validates the bearer token and stores the caller as a booking.Actor.
func Auth(jwtService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token expired"
			}
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}

		c.Set(actorKey, claims.Actor())
		c.Next()
	}
}

// ActorFrom returns the authenticated caller.
func ActorFrom(c *gin.Context) (booking.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return booking.Actor{}, false
	}
	actor, ok := v.(booking.Actor)
	return actor, ok
}

// RequireAdmin rejects non-admin callers with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !actor.IsAdmin() {
			abortError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
