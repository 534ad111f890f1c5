package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ledger_system/internal/config"
)

// Backend is an opened store plus whatever must be released on shutdown
type Backend struct {
	Store Store
	Close func() error
}

// New opens the backend selected by cfg.StoreBackend
func New(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return &Backend{Store: NewMemory(), Close: noop}, nil
	case config.BackendFile:
		f, err := NewFile(cfg.StoreFile)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: f, Close: noop}, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		logrus.WithField("addr", cfg.RedisAddr).Info("Using Redis store")
		return &Backend{Store: NewRedis(rdb, cfg.RedisKeyPrefix), Close: rdb.Close}, nil
	case config.BackendMySQL:
		db, err := gorm.Open(mysql.Open(cfg.MySQLDSN()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect to DB: %w", err)
		}
		if err := db.AutoMigrate(&Collection{}); err != nil {
			return nil, fmt.Errorf("migrate collections: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("unwrap DB: %w", err)
		}
		logrus.WithField("host", cfg.DBHost).Info("Using MySQL store")
		return &Backend{Store: NewGorm(db), Close: sqlDB.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func noop() error { return nil }
