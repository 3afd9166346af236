package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	lockTTL      = 10 * time.Second
	lockRetries  = 20
	lockInterval = 50 * time.Millisecond
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client used for per-book locking
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Lock acquires a short-lived mutex for the given key, retrying briefly.
// The returned func releases it. BookCopy.status flips and queue-position
// recomputes run under a per-book lock so two requests cannot interleave
// their read-then-write on the same book.
func (c *Client) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("lock:%s", key)

	for i := 0; i < lockRetries; i++ {
		ok, err := c.rdb.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { c.rdb.Del(context.Background(), lockKey) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockInterval):
		}
	}

	return nil, fmt.Errorf("lock %s: timed out", key)
}
