package api

import (
	"ledger_system/internal/analytics"  // Aggregates over a snapshot
	"ledger_system/internal/insights"   // Observations over aggregates
	"ledger_system/internal/ledger"     // Ledger store
	"ledger_system/internal/middleware" // Acting user lookup
	"ledger_system/internal/utils"      // Utility functions
	"net/http"                          // HTTP status codes
	"time"                              // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// SummaryResponse is the dashboard payload
type SummaryResponse struct {
	Report   analytics.Report   `json:"report"`   // Every aggregate
	Insights []insights.Insight `json:"insights"` // Rules that fired
}

// SummaryHandler returns the full report and insights for the authenticated
// user, served from Redis until a mutation invalidates it
func SummaryHandler(l *ledger.Ledger, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c) // Authenticated user
		if !ok {
			return
		}
		ctx := c.Request.Context()                                // Context for Redis operations
		cacheKey := utils.SummaryCacheKey(actor.ID)               // Cache key for the summary
		var cached SummaryResponse                                // Cached payload
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"report": cached.Report, "insights": cached.Insights, "cached": true})
			return
		}
		snap, err := l.Snapshot(ctx, actor) // Consistent view of the ledger
		if err != nil {
			respondError(c, err) // Storage failure
			return
		}
		resp := SummaryResponse{
			Report:   analytics.Summarize(snap.Accounts, snap.Transactions), // All aggregates
			Insights: insights.ForTransactions(snap.Transactions),           // Rules over the history
		}
		// Cache the response for future requests
		if err := utils.SetCache(ctx, rdb, cacheKey, resp, ttl); err != nil {
			logrus.WithError(err).Warn("Failed to cache analytics summary")
		}
		c.JSON(http.StatusOK, gin.H{"report": resp.Report, "insights": resp.Insights, "cached": false})
	}
}

// InsightsHandler returns only the insights for the authenticated user
func InsightsHandler(l *ledger.Ledger, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c) // Authenticated user
		if !ok {
			return
		}
		ctx := c.Request.Context()                                // Context for Redis operations
		cacheKey := utils.InsightsCacheKey(actor.ID)              // Cache key for insights
		var cached []insights.Insight                             // Cached insights
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"insights": cached, "cached": true})
			return
		}
		txs, err := l.GetTransactions(ctx, actor) // Full history
		if err != nil {
			respondError(c, err) // Storage failure
			return
		}
		out := insights.ForTransactions(txs) // Evaluate every rule
		// Cache the response for future requests
		if err := utils.SetCache(ctx, rdb, cacheKey, out, ttl); err != nil {
			logrus.WithError(err).Warn("Failed to cache insights")
		}
		c.JSON(http.StatusOK, gin.H{"insights": out, "cached": false})
	}
}

// BreakdownHandler returns debit totals by category, by payment method and
// by both
func BreakdownHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		txs, err := l.GetTransactions(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err) // Storage failure
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories":       analytics.CategoryWiseSpending(txs),    // Debits per category
			"highest_category": analytics.HighestSpendingCategory(txs), // Largest category
			"payment_methods":  analytics.SpendingByPaymentMethod(txs), // Debits per method
			"breakdown":        analytics.SpendingBreakdown(txs),       // Category x method rows
		})
	}
}

// PeriodSpendingHandler returns debit totals bucketed by
// daily, weekly, monthly or quarterly periods
func PeriodSpendingHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		period, err := analytics.ParsePeriod(c.Param("period")) // Requested granularity
		if err != nil {
			respondError(c, err) // Unknown period
			return
		}
		txs, err := l.TransactionsInRange(c.Request.Context(), middleware.Actor(c), c.Query("from"), c.Query("to"))
		if err != nil {
			respondError(c, err) // Bad range or storage failure
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"period":  period,                                                    // Echo the period
			"buckets": analytics.Series(analytics.SpendingByPeriod(txs, period)), // Sorted buckets
		})
	}
}
