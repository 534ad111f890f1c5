package api

import (
	"ledger_system/internal/domain"     // Importing domain models
	"ledger_system/internal/ledger"     // Ledger store
	"ledger_system/internal/middleware" // Acting user lookup
	"net/http"                          // HTTP status codes
	"strconv"                           // String conversion

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
)

// CreateTransactionRequest represents a new transaction
type CreateTransactionRequest struct {
	AccountID     string                 `json:"account_id" binding:"required"` // Owned account
	Type          domain.TransactionType `json:"type" binding:"required"`       // credit or debit
	Category      string                 `json:"category"`                      // Defaults to Other
	PaymentMethod string                 `json:"payment_method"`                // Cash, card, UPI...
	Amount        decimal.Decimal        `json:"amount"`                        // Must be positive
	Date          string                 `json:"date" binding:"required"`       // YYYY-MM-DD
	Notes         string                 `json:"notes"`                         // Free text
}

// UpdateTransactionRequest lists the fields to change
type UpdateTransactionRequest struct {
	AccountID     *string                 `json:"account_id"`     // Move to another owned account
	Type          *domain.TransactionType `json:"type"`           // New direction
	Category      *string                 `json:"category"`       // New category
	PaymentMethod *string                 `json:"payment_method"` // New payment method
	Amount        *decimal.Decimal        `json:"amount"`         // New amount
	Date          *string                 `json:"date"`           // New date
	Notes         *string                 `json:"notes"`          // New notes
}

// CreateTransactionHandler records a transaction against an owned account
func CreateTransactionHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		actor := middleware.Actor(c) // Authenticated user
		tx, err := l.AddTransaction(c.Request.Context(), actor, ledger.NewTransaction{
			AccountID:     req.AccountID,     // Target account
			Type:          req.Type,          // credit or debit
			Category:      req.Category,      // Spending category
			PaymentMethod: req.PaymentMethod, // Payment method
			Amount:        req.Amount,        // Positive amount
			Date:          req.Date,          // Transaction date
			Notes:         req.Notes,         // Free text
		})
		if err != nil {
			respondError(c, err) // Validation, ownership or storage failure
			return
		}
		invalidate(c, rdb, actor.ID)                         // Drop cached analytics
		c.JSON(http.StatusCreated, gin.H{"transaction": tx}) // Return the new transaction
	}
}

// ListTransactionsHandler returns the authenticated user's transactions,
// optionally limited to ?from=&to= dates, one page at a time
func ListTransactionsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			txs []domain.Transaction // Matching transactions
			err error
		)
		actor := middleware.Actor(c) // Authenticated user
		from, to := c.Query("from"), c.Query("to")
		if from != "" || to != "" {
			txs, err = l.TransactionsInRange(c.Request.Context(), actor, from, to) // Inclusive date range
		} else {
			txs, err = l.GetTransactions(c.Request.Context(), actor) // Full history
		}
		if err != nil {
			respondError(c, err) // Bad range or storage failure
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		total := len(txs)                               // Total matching transactions
		totalPages := (total + pageSize - 1) / pageSize // Calculate total pages
		offset := min((page-1)*pageSize, total)         // Calculate offset
		end := min(offset+pageSize, total)              // End of the page
		c.JSON(http.StatusOK, gin.H{
			"transactions": txs[offset:end], // Current page
			"page":         page,            // Current page number
			"page_size":    pageSize,        // Page size
			"total":        total,           // Total transactions
			"total_pages":  totalPages,      // Total pages
		})
	}
}

// GetTransactionHandler returns one owned transaction
func GetTransactionHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := l.GetTransaction(c.Request.Context(), middleware.Actor(c), c.Param("id"))
		if err != nil {
			respondError(c, err) // Not found or not owned
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}

// UpdateTransactionHandler edits an owned transaction and rebalances accounts
func UpdateTransactionHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		actor := middleware.Actor(c) // Authenticated user
		tx, err := l.UpdateTransaction(c.Request.Context(), actor, c.Param("id"), ledger.TransactionPatch{
			AccountID:     req.AccountID,     // Nil keeps the account
			Type:          req.Type,          // Nil keeps the type
			Category:      req.Category,      // Nil keeps the category
			PaymentMethod: req.PaymentMethod, // Nil keeps the method
			Amount:        req.Amount,        // Nil keeps the amount
			Date:          req.Date,          // Nil keeps the date
			Notes:         req.Notes,         // Nil keeps the notes
		})
		if err != nil {
			respondError(c, err) // Validation, ownership or storage failure
			return
		}
		invalidate(c, rdb, actor.ID)                    // Drop cached analytics
		c.JSON(http.StatusOK, gin.H{"transaction": tx}) // Return the updated transaction
	}
}

// DeleteTransactionHandler removes an owned transaction and reverses its effect
func DeleteTransactionHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.Actor(c) // Authenticated user
		if err := l.DeleteTransaction(c.Request.Context(), actor, c.Param("id")); err != nil {
			respondError(c, err) // Not found or storage failure
			return
		}
		invalidate(c, rdb, actor.ID) // Drop cached analytics
		c.Status(http.StatusNoContent)
	}
}
