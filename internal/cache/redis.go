// Package cache backs the loader's dataset cache with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/config"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/loader"
)

var _ loader.Store = (*RedisStore)(nil)

// ErrNotConfigured is returned by Open when no address is set.
var ErrNotConfigured = errors.New("cache: redis address not configured")

// payload is the stored form. Version guards against stale layouts.
type payload struct {
	Version int             `json:"v"`
	Records []engine.Record `json:"records"`
}

const payloadVersion = 1

// RedisStore stores decoded records as JSON under prefix+key.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb redis.UniversalClient, prefix string, ttl time.Duration, logger logging.Logger) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		logger: logging.OrDefault(logger).Named("redis"),
	}
}

// Open dials Redis from cfg and pings it.
func Open(ctx context.Context, cfg config.CacheConfig, logger logging.Logger) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, ErrNotConfigured
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: connect %s: %w", cfg.Addr, err)
	}
	return NewRedisStore(rdb, cfg.Prefix, cfg.TTL, logger), nil
}

// Get returns the records stored under key. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]engine.Record, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if p.Version != payloadVersion {
		s.logger.Debug("stale cache payload", logging.String("key", key), logging.Int("version", p.Version))
		return nil, false, nil
	}
	return p.Records, true, nil
}

// Set stores records under key with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, records []engine.Record) error {
	raw, err := json.Marshal(payload{Version: payloadVersion, Records: records})
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
