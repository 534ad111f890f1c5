package api

import (
	"ledger_system/internal/domain"     // Importing domain models
	"ledger_system/internal/middleware" // Acting user lookup
	"net/http"                          // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps a domain error kind to its HTTP status
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindNotAuthenticated, domain.KindInvalidCredentials:
		return http.StatusUnauthorized // Missing or wrong identity
	case domain.KindInvalidInput:
		return http.StatusBadRequest // Rejected field
	case domain.KindNotFound:
		return http.StatusNotFound // Missing or not owned
	case domain.KindDuplicateEmail:
		return http.StatusConflict // Email taken
	default:
		return http.StatusInternalServerError // Storage or unexpected failure
	}
}

// respondError writes err as {"error": message}. Non-domain errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err) // Classify the error
	if kind == "" {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route that failed
			"error": err,          // Underlying error
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(statusOf(kind), gin.H{"error": err.Error()})
}

// badRequest reports a malformed request body
func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

// requireActor returns the acting user, answering 401 when none is set
func requireActor(c *gin.Context) (*domain.Actor, bool) {
	actor := middleware.Actor(c) // Set by AuthMiddleware
	if actor == nil {
		respondError(c, domain.ErrNotAuthenticated) // No acting user
		return nil, false
	}
	return actor, true
}
