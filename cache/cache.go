// Package cache stores translations between runs, keyed by tlrun.CacheKey.
package cache

import (
	"context"

	"github.com/ZaguanLabs/tlrun"
	"go.uber.org/zap"
)

// TranslationCache is an alias to the main package interface.
type TranslationCache = tlrun.TranslationCache

// Config selects a cache backend. RedisURL wins over File; with neither set
// Open returns a nil cache and translation runs uncached.
type Config struct {
	RedisURL string
	File     string
	TTL      int // Seconds, 0 = no expiration
	Logger   *zap.Logger
}

// Store is a cache that must be closed when the run ends.
type Store interface {
	TranslationCache
	Close() error
}

// Open builds the configured cache.
func Open(ctx context.Context, cfg Config) (Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch {
	case cfg.RedisURL != "":
		c, err := NewRedisCache(ctx, RedisConfig{URL: cfg.RedisURL, TTL: cfg.TTL, Logger: logger})
		if err != nil {
			return nil, &tlrun.CacheError{Message: "connecting to redis", Cause: err}
		}
		logger.Debug("using redis cache")
		return c, nil
	case cfg.File != "":
		c, err := OpenFileCache(cfg.File, cfg.TTL)
		if err != nil {
			return nil, err
		}
		logger.Debug("using file cache", zap.String("path", cfg.File), zap.Int("entries", c.Len()))
		return c, nil
	default:
		return nil, nil
	}
}
