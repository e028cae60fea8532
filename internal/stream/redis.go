package stream

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
	ctx = context.Background()
)

// InitRedis connects the package-level client. Everything in this package is
// optional at runtime: without InitRedis the constructors return inert
// instances that publish nothing and admit everything.
func InitRedis(addr, password string, db int) error {
	opt := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}

	rdb = redis.NewClient(opt)

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return nil
}

// GetRedisClient returns the shared client, nil before InitRedis.
func GetRedisClient() *redis.Client {
	return rdb
}

// GetContext returns the default context.
func GetContext() context.Context {
	return ctx
}
