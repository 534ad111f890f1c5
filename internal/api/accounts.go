package api

import (
	"ledger_system/internal/ledger"     // Ledger store
	"ledger_system/internal/middleware" // Acting user lookup
	"net/http"                          // HTTP status codes

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
)

// CreateAccountRequest represents a new account
type CreateAccountRequest struct {
	BankName       string          `json:"bank_name" binding:"required"` // Bank display name
	AccountType    string          `json:"account_type"`                 // Savings, current...
	InitialBalance decimal.Decimal `json:"initial_balance"`              // Opening balance, defaults to 0
}

// UpdateAccountRequest changes an account's display fields
type UpdateAccountRequest struct {
	BankName    *string `json:"bank_name"`    // New bank name
	AccountType *string `json:"account_type"` // New account type
}

// CreateAccountHandler opens an account for the authenticated user
func CreateAccountHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		actor := middleware.Actor(c) // Authenticated user
		acc, err := l.AddAccount(c.Request.Context(), actor, ledger.NewAccount{
			BankName:       req.BankName,       // Bank display name
			AccountType:    req.AccountType,    // Account type
			InitialBalance: req.InitialBalance, // Opening balance
		})
		if err != nil {
			respondError(c, err) // Validation or storage failure
			return
		}
		invalidate(c, rdb, actor.ID)                      // Drop cached analytics
		c.JSON(http.StatusCreated, gin.H{"account": acc}) // Return the new account
	}
}

// ListAccountsHandler returns the authenticated user's accounts
func ListAccountsHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := l.GetAccounts(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err) // Storage failure
			return
		}
		c.JSON(http.StatusOK, gin.H{"accounts": accounts, "total": len(accounts)})
	}
}

// GetAccountHandler returns one owned account
func GetAccountHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := l.GetAccount(c.Request.Context(), middleware.Actor(c), c.Param("id"))
		if err != nil {
			respondError(c, err) // Not found or not owned
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": acc})
	}
}

// UpdateAccountHandler patches an owned account's display fields
func UpdateAccountHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c) // If binding fails, return bad request
			return
		}
		actor := middleware.Actor(c) // Authenticated user
		acc, err := l.UpdateAccount(c.Request.Context(), actor, c.Param("id"), ledger.AccountPatch{
			BankName:    req.BankName,    // Nil leaves the bank name unchanged
			AccountType: req.AccountType, // Nil leaves the type unchanged
		})
		if err != nil {
			respondError(c, err) // Not found or storage failure
			return
		}
		invalidate(c, rdb, actor.ID)                 // Drop cached analytics
		c.JSON(http.StatusOK, gin.H{"account": acc}) // Return the updated account
	}
}

// DeleteAccountHandler removes an owned account that has no transactions
func DeleteAccountHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.Actor(c) // Authenticated user
		if err := l.DeleteAccount(c.Request.Context(), actor, c.Param("id")); err != nil {
			respondError(c, err) // Not found or still referenced
			return
		}
		invalidate(c, rdb, actor.ID) // Drop cached analytics
		c.Status(http.StatusNoContent)
	}
}
