package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client but fails safe: connectivity errors behave like
// cache misses and are only logged. A nil *Client is a valid, disabled cache.
type Client struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a new Redis-backed cache.
func New(addr, password string, db int, logger *slog.Logger) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return NewWithClient(redis.NewClient(opts), logger)
}

// NewWithClient wraps an existing redis client.
func NewWithClient(client *redis.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{client: client, logger: logger.With(slog.String("component", "cache"))}
}

// Ping checks connectivity. Unlike the other methods it reports the error.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "cache get failed", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return res
}

// GetJSON decodes a cached value into dst and reports whether it was a hit.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.WarnContext(ctx, "cache entry undecodable, dropping", slog.String("key", key), slog.Any("error", err))
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

// SetJSON encodes value as JSON and stores it with TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	c.Set(ctx, key, payload, ttl)
}

// Delete removes keys, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache delete failed", slog.Any("keys", keys), slog.Any("error", err))
	}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
