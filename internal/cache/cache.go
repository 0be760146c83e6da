package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured is returned by Ping on a Client with no redis behind it.
var ErrNotConfigured = errors.New("cache: redis client not configured")

// Client is a read-through cache over redis. Lookups and writes never fail the
// caller: an unreachable redis behaves like an empty cache. Session records
// need hard errors and go through Redis() instead.
type Client struct {
	rdb *redis.Client
}

// New connects lazily to the redis instance at addr.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *Client) usable() bool {
	return c != nil && c.rdb != nil
}

// Redis exposes the underlying client, or nil.
func (c *Client) Redis() *redis.Client {
	if !c.usable() {
		return nil
	}
	return c.rdb
}

// Ping reports whether redis answers.
func (c *Client) Ping(ctx context.Context) error {
	if !c.usable() {
		return ErrNotConfigured
	}
	return c.rdb.Ping(ctx).Err()
}

// GetJSON decodes the value at key into dst and reports whether it was found.
// Misses, redis errors and undecodable payloads all report false.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.usable() {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON stores v at key for ttl. Encoding and redis errors are dropped.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if !c.usable() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete evicts key. Redis errors are dropped; the entry then ages out by TTL.
func (c *Client) Delete(ctx context.Context, key string) {
	if !c.usable() {
		return
	}
	_ = c.rdb.Del(ctx, key).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.usable() {
		return nil
	}
	return c.rdb.Close()
}
