// Package cache stores serialized lookup results so repeated dish searches skip
// the external services.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/ayusman/rasoi/internal/config"
	"github.com/ayusman/rasoi/internal/metrics"
	"github.com/ayusman/rasoi/internal/store"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// New builds the cache selected by cfg.Backend. st is used by the sqlite backend.
func New(cfg config.CacheConfig, st *store.Store) (Cache, error) {
	switch cfg.Backend {
	case "sqlite":
		if st == nil {
			return nil, errors.New("sqlite cache requires a store")
		}
		return NewSQLite(st), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return NewRedis(client, "rasoi:"), nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// SQLite caches entries in the store's cache_entries table.
type SQLite struct {
	repo *store.CacheRepository
}

// NewSQLite returns a cache backed by st.
func NewSQLite(st *store.Store) *SQLite {
	return &SQLite{repo: st.Cache()}
}

// Get returns the cached value for key.
func (c *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key for ttl.
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.repo.Set(ctx, key, value, ttl)
}

// Redis caches entries in a Redis server under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a cache using client. Keys are stored as prefix+key.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// Get returns the cached value for key.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value under key for ttl.
func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Noop never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// GetJSON decodes the cached value for key into v. kind labels the metric.
func GetJSON(ctx context.Context, c Cache, kind, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		metrics.CacheRequests.WithLabelValues(kind, "error").Inc()
		return false, err
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues(kind, "miss").Inc()
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		metrics.CacheRequests.WithLabelValues(kind, "error").Inc()
		return false, fmt.Errorf("failed to decode cached %s: %w", kind, err)
	}
	metrics.CacheRequests.WithLabelValues(kind, "hit").Inc()
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// Key joins a kind and a normalized dish name into a cache key.
func Key(kind, dish string) string {
	return kind + ":" + dish
}
