package store

import (
	"context" // Context for Redis operations
	"errors"  // Matching redis.Nil
	"fmt"     // Error wrapping

	"github.com/redis/go-redis/v9" // Redis client
)

// Redis keeps each slot under its own string key
type Redis struct {
	rdb    *redis.Client // Redis client
	prefix string        // Key prefix, e.g. "ledger:"
}

// NewRedis wraps an existing client
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Load(ctx context.Context, key string, dest any) (bool, error) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes() // Get blob from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Slot never written
	} else if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return true, Decode(val, dest)
}

func (r *Redis) Save(ctx context.Context, slots ...Slot) error {
	encoded, err := encodeAll(slots)
	if err != nil {
		return err
	}
	// MULTI/EXEC so readers never observe half of a multi-slot write
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, b := range encoded {
			pipe.Set(ctx, r.prefix+k, b, 0) // No expiry
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}
