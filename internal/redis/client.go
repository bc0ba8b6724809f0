package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client is the single shared connection pool for sessions, flashes and the
// consistency stream.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient parses redis://[:password@]host:port[/db] and opens a pool.
func NewClient(redisURL string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}

	return &Client{Client: redis.NewClient(opts), log: log}, nil
}

// Ping fails fast on startup when Redis is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	c.log.Info("connected to redis", zap.String("addr", c.Options().Addr))
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
