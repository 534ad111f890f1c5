package middleware

import (
	"ledger_system/internal/auth"   // User lookups
	"ledger_system/internal/domain" // Importing domain models
	"ledger_system/internal/utils"  // JWT utility functions
	"net/http"                      // HTTP status codes
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ActorKey is the context key holding the acting *domain.Actor
const ActorKey = "actor"

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// unauthorized aborts with 401 and the given message
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// AuthMiddleware validates the bearer token and resolves its subject to a
// registered user on every request. Tokens of unknown users are rejected.
func AuthMiddleware(secret string, users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		claims, err := utils.ParseJWT(token, secret)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}
		user, err := users.UserByID(c.Request.Context(), claims.UserID)
		switch {
		case domain.KindOf(err) == domain.KindNotFound:
			unauthorized(c, domain.ErrNotAuthenticated.Message) // Subject no longer registered
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"user_id": claims.UserID, // Token subject
				"error":   err,           // Store error
			}).Error("Failed to resolve acting user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}
		c.Set(ActorKey, user.Actor()) // Store the acting user in context
		c.Next()
	}
}

// Actor returns the acting user set by AuthMiddleware, or nil
func Actor(c *gin.Context) *domain.Actor {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*domain.Actor)
	return actor
}
