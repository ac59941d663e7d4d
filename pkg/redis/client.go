package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client used for pub/sub fan-out.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		PingTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	if cfg.PingTimeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
		}
	}
	return &Client{rdb: rdb}, nil
}

// Publish sends value to channel. Values other than string or []byte are JSON encoded.
// It returns the number of subscribers that received the message.
func (c *Client) Publish(ctx context.Context, channel string, value interface{}) (int64, error) {
	var payload interface{}
	switch v := value.(type) {
	case string, []byte:
		payload = v
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return 0, fmt.Errorf("marshal: %w", err)
		}
		payload = b
	}
	n, err := c.rdb.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return n, nil
}

// Addr returns the configured server address.
func (c *Client) Addr() string { return c.rdb.Options().Addr }

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
