package config

import (
	"fmt"     // For error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For joining validation errors
	"time"    // For token and cache lifetimes

	"github.com/joho/godotenv" // For loading .env files
)

// Store backends
const (
	BackendMemory = "memory" // Process memory, lost on exit
	BackendFile   = "file"   // JSON file snapshot
	BackendRedis  = "redis"  // One Redis key per collection
	BackendMySQL  = "mysql"  // collections table through GORM
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	JWTSecret      string        // JWT secret key
	JWTTTL         time.Duration // JWT lifetime
	RedisAddr      string        // Redis server address
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	RedisKeyPrefix string        // Prefix for collection keys in Redis
	CacheTTL       time.Duration // Lifetime of cached analytics responses
	StoreBackend   string        // memory, file, redis or mysql
	StoreFile      string        // Path used by the file backend
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),                                      // Application port
		DBUser:         os.Getenv("DB_USER"),                                            // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                                        // Database password
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),                                  // Database host
		DBPort:         getEnv("DB_PORT", "3306"),                                       // Database port
		DBName:         os.Getenv("DB_NAME"),                                            // Database name
		JWTSecret:      os.Getenv("JWT_SECRET"),                                         // JWT secret key
		JWTTTL:         time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,       // JWT lifetime
		RedisAddr:      os.Getenv("REDIS_ADDR"),                                         // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                                         // Redis password
		RedisDB:        getEnvInt("REDIS_DB", 0),                                        // Redis database number
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "ledger:"),                           // Redis key prefix
		CacheTTL:       time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second, // Cache lifetime
		StoreBackend:   getEnv("STORE_BACKEND", BackendMySQL),                           // Persistence backend
		StoreFile:      getEnv("STORE_FILE", "data.json"),                               // File backend path
		IsProd:         os.Getenv("IS_PROD") == "true",                                  // Is production environment
	}
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var problems []string
	// Port must be numeric and in range
	if port, err := strconv.Atoi(c.AppPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid APP_PORT %q", c.AppPort))
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendFile:
		if c.StoreFile == "" {
			problems = append(problems, "STORE_FILE is required for the file backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required for the redis backend")
		}
	case BackendMySQL:
		if c.DBUser == "" || c.DBName == "" {
			problems = append(problems, "DB_USER and DB_NAME are required for the mysql backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid STORE_BACKEND %q: must be one of memory, file, redis, mysql", c.StoreBackend))
	}
	if c.JWTTTL <= 0 {
		problems = append(problems, "JWT_TTL_HOURS must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MySQLDSN builds the Data Source Name for the MySQL connection
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or def when unset
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the variable as an int or def when unset or malformed
func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
