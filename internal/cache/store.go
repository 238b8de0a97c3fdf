// Package cache provides the byte-oriented key/value stores behind the week
// view and AI proposal caches.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/config"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a TTL key/value store. Any error other than ErrMiss means the
// backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewFromConfig builds the store selected by CACHE_MODE. When Redis cannot be
// reached the in-memory store is used instead and a warning is logged.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) Store {
	if cfg.CacheMode != config.CacheModeRedis {
		logger.Info("Cache: in-memory (go-cache)")
		return NewMemory(time.Duration(cfg.WeekCacheTTLMinutes) * time.Minute)
	}

	store, err := NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Cache: redis unavailable, falling back to in-memory")
		return NewMemory(time.Duration(cfg.WeekCacheTTLMinutes) * time.Minute)
	}

	logger.Info("Cache: redis")
	return store
}
