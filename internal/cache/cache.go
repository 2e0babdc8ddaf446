package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
)

// Cache is a read-through cache over a Store with one TTL for every key.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func New(store Store, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

func (c *Cache) TTL() time.Duration { return c.ttl }

// Invalidate drops the key so the next Fetch reloads.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// cacheable lets a value veto being stored (for example a partial load).
type cacheable interface {
	Cacheable() bool
}

// Fetch returns the cached value for key, or calls load and stores the
// result. Both paths return a value decoded from the same JSON, so a cold
// and a warm read are indistinguishable. Store failures degrade to load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var out T
		jerr := json.Unmarshal(raw, &out)
		if jerr == nil {
			monitoring.CacheLookups.WithLabelValues("hit").Inc()
			return out, nil
		}
		c.logger.Warn("cache entry unreadable, reloading", zap.String("key", key), zap.Error(jerr))
	case errors.Is(err, ErrMiss):
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
	default:
		monitoring.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache store unavailable", zap.String("key", key), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return zero, err
	}

	raw, err = json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", key, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode %s: %w", key, err)
	}

	if v, ok := any(value).(cacheable); ok && !v.Cacheable() {
		return out, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
