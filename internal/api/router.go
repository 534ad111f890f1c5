package api

import (
	"ledger_system/internal/auth"       // User registration and credentials
	"ledger_system/internal/ledger"     // Ledger store
	"ledger_system/internal/middleware" // Custom package for middleware
	"time"                              // Time durations

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
)

// Deps are the collaborators of the HTTP surface
type Deps struct {
	Ledger    *ledger.Ledger      // Ledger store
	Users     *auth.Service       // User registry
	Redis     *redis.Client       // Analytics cache, nil disables caching
	JWTSecret string              // Token signing key
	JWTTTL    time.Duration       // Token lifetime
	CacheTTL  time.Duration       // Analytics cache lifetime
	Gatherer  prometheus.Gatherer // Metrics source, nil hides /metrics
}

// NewRouter wires every route onto a Gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Auth routes
	r.POST("/user", RegisterHandler(d.Users))                           // Registration endpoint
	r.POST("/user/login", LoginHandler(d.Users, d.JWTSecret, d.JWTTTL)) // Login endpoint

	// Every other route acts on behalf of the token's user
	authed := middleware.AuthMiddleware(d.JWTSecret, d.Users) // Bearer token to acting user
	r.GET("/user", authed, CurrentUserHandler())              // Current user endpoint

	// Account routes (protected by JWT)
	accountGroup := r.Group("/accounts", authed)
	accountGroup.POST("", CreateAccountHandler(d.Ledger, d.Redis))       // Create account endpoint
	accountGroup.GET("", ListAccountsHandler(d.Ledger))                  // List accounts endpoint
	accountGroup.GET("/:id", GetAccountHandler(d.Ledger))                // Get account endpoint
	accountGroup.PATCH("/:id", UpdateAccountHandler(d.Ledger, d.Redis))  // Update account endpoint
	accountGroup.DELETE("/:id", DeleteAccountHandler(d.Ledger, d.Redis)) // Delete account endpoint

	// Transaction routes (protected by JWT)
	txGroup := r.Group("/transactions", authed)
	txGroup.POST("", CreateTransactionHandler(d.Ledger, d.Redis))       // Create transaction endpoint
	txGroup.GET("", ListTransactionsHandler(d.Ledger))                  // Transaction history endpoint
	txGroup.GET("/:id", GetTransactionHandler(d.Ledger))                // Get transaction endpoint
	txGroup.PATCH("/:id", UpdateTransactionHandler(d.Ledger, d.Redis))  // Update transaction endpoint
	txGroup.DELETE("/:id", DeleteTransactionHandler(d.Ledger, d.Redis)) // Delete transaction endpoint

	// Analytics routes (protected by JWT)
	analyticsGroup := r.Group("/analytics", authed)
	analyticsGroup.GET("/summary", SummaryHandler(d.Ledger, d.Redis, d.CacheTTL))   // Dashboard endpoint
	analyticsGroup.GET("/insights", InsightsHandler(d.Ledger, d.Redis, d.CacheTTL)) // Insights endpoint
	analyticsGroup.GET("/breakdown", BreakdownHandler(d.Ledger))                    // Category and method breakdown
	analyticsGroup.GET("/spending/:period", PeriodSpendingHandler(d.Ledger))        // Spending over time

	// Prometheus scrape endpoint
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}
