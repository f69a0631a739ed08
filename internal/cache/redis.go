package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lawnchairsociety/shipyard/internal/logger"
)

// KeyPrefix namespaces every cached snapshot.
const KeyPrefix = "shipyard:ship:"

// Key returns the Redis key for a seed.
func Key(seed string) string {
	return KeyPrefix + seed
}

// Redis caches snapshots in a Redis server with an optional TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects and pings. cfg.URL wins over cfg.Addr when both are set.
func NewRedis(cfg Config) (*Redis, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		logger.Debug("Connecting to Redis using URL")
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsed
	} else {
		logger.Debug("Connecting to Redis", "addr", cfg.Addr)
		opts = &redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Redis connection established", "addr", opts.Addr, "ttl", cfg.TTL)
	return &Redis{client: rdb, ttl: cfg.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, seed string) ([]byte, error) {
	data, err := r.client.Get(ctx, Key(seed)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", Key(seed), err)
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, seed string, data []byte) error {
	if err := r.client.Set(ctx, Key(seed), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", Key(seed), err)
	}
	return nil
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
