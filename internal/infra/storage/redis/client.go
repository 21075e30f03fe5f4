// Package redis holds the Redis-backed infrastructure adapters.
package redis

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type client struct {
	conn    *redis.Client
	rateTTL time.Duration
}

// Option configures the client created by NewClient.
type Option func(*client)

// WithRateTTL sets how long cached exchange rates stay valid.
func WithRateTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.rateTTL = ttl
	}
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	c := &client{
		conn:    conn,
		rateTTL: defaultRateTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
