// Package redis provides an optional cache for task records and
// compiled reports.
//
// Graceful fallback: if Redis is not configured or unreachable, every
// operation is a silent no-op so the orchestrator never depends on it.
package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes.
const (
	KeyTask   = "task:"   // Task lifecycle records
	KeyReport = "report:" // Compiled reports by request id
)

// Config holds Redis connection settings.
type Config struct {
	URL      string // redis://host:port
	Password string
	DB       int
}

// Client wraps a Redis connection. A nil or disconnected Client is safe
// to use; its methods do nothing.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis. Returns a disabled client when cfg.URL is empty
// or the server is unreachable.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		return &Client{}
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Printf("[Redis] ❌ Invalid URL: %v", err)
		return &Client{}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.MaxRetries = 3

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[Redis] ❌ Connection failed: %v", err)
		return &Client{}
	}

	log.Println("[Redis] ✅ Connected")
	return &Client{rdb: rdb}
}

// Enabled reports whether a live connection exists.
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// SetJSON stores v as JSON under key with a TTL.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Redis] Marshal %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Redis] Set %s: %v", key, err)
	}
}

// GetJSON loads key into dest. Returns false when the key is missing or
// the client is disabled.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	c.rdb.Del(ctx, key)
}

// Close shuts down the connection.
func (c *Client) Close() {
	if c.Enabled() {
		c.rdb.Close()
	}
}
