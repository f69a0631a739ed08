// Package cache stores encoded ship snapshots by seed, in Redis or in process memory.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the seed is not cached.
var ErrMiss = errors.New("cache miss")

// Cache is a seed-keyed byte store. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, seed string) ([]byte, error)
	Set(ctx context.Context, seed string, data []byte) error
	Close() error
}

// Config selects and tunes the cache backend.
type Config struct {
	Enabled  bool
	URL      string
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// MemoryEntries bounds the in-memory fallback.
	MemoryEntries int
}

// Connect returns a Redis cache when enabled, otherwise an in-memory one.
// An unreachable Redis is an error; callers decide whether to fall back.
func Connect(cfg Config) (Cache, error) {
	if !cfg.Enabled {
		return NewMemory(cfg.MemoryEntries), nil
	}
	return NewRedis(cfg)
}
