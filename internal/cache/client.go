package cache

import (
	"context"
	"time"

	"quantum_clicker/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Client wraps the redis client. A nil *Client is valid everywhere and
// means redis is not configured: callers fall back to Postgres.
type Client struct {
	*redis.Client
}

// Connect returns nil (not an error) when addr is empty or redis is
// unreachable, so the server keeps running without the cache.
func Connect(addr, password string, db int) *Client {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", addr, "error", err)
		return nil
	}

	logger.Info("redis connected", "addr", addr, "db", db)
	return &Client{rdb}
}
