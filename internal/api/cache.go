package api

import (
	"ledger_system/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// invalidate drops a user's cached analytics after a ledger mutation. A
// failed delete is logged; the mutation has already been persisted.
func invalidate(c *gin.Context, rdb *redis.Client, userID string) {
	if err := utils.InvalidateUser(c.Request.Context(), rdb, userID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // Owner of the stale entries
			"error":   err,    // Redis error
		}).Warn("Failed to invalidate analytics cache")
	}
}
