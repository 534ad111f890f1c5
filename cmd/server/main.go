package main

import (
	"context"                        // context package is needed for Redis operations
	"ledger_system/internal/api"     // Custom package for API handlers
	"ledger_system/internal/auth"    // Custom package for users and sessions
	"ledger_system/internal/config"  // Custom package for configuration
	"ledger_system/internal/ledger"  // Custom package for the ledger store
	"ledger_system/internal/metrics" // Custom package for Prometheus metrics
	"ledger_system/internal/store"   // Custom package for persistence backends

	"github.com/gin-gonic/gin"                       // Gin web framework
	"github.com/prometheus/client_golang/prometheus" // Prometheus registry
	"github.com/redis/go-redis/v9"                   // Redis client
	"github.com/sirupsen/logrus"                     // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	}

	// Refuse to start with an unusable configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required") // Tokens cannot be signed without a key
	}

	ctx := context.Background() // Startup context

	// Open the persistence backend
	backend, err := store.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to open %s store: %v", cfg.StoreBackend, err) // Fatal error if the store is unusable
	}
	defer backend.Close()

	// Setup Redis client for the analytics cache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer) // Ledger operation metrics
	r := api.NewRouter(api.Deps{
		Ledger:    ledger.New(backend.Store, logrus.StandardLogger(), recorder), // Ledger store
		Users:     auth.NewService(backend.Store, logrus.StandardLogger()),      // User registry
		Redis:     redisClient,                                                  // Analytics cache
		JWTSecret: cfg.JWTSecret,                                                // Token signing key
		JWTTTL:    cfg.JWTTTL,                                                   // Token lifetime
		CacheTTL:  cfg.CacheTTL,                                                 // Cache lifetime
		Gatherer:  prometheus.DefaultGatherer,                                   // Metrics source
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithField("backend", cfg.StoreBackend).Info("Server running on " + cfg.AppPort) // Log server start
	// Start the server on port cfg.AppPort
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Errorf("server stopped: %v", err)
	}
}
