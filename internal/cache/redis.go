package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"historyScope/internal/metrics"
)

// NewRedisClient parses url, connects, and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis is a shared Cache storing JSON-encoded values.
type Redis[K Key, V any] struct {
	name   string
	prefix string
	client redis.Cmdable
	logger *zap.Logger
}

// NewRedis creates a Redis-backed cache; keys are namespaced by prefix.
func NewRedis[K Key, V any](name, prefix string, client redis.Cmdable, logger *zap.Logger) *Redis[K, V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis[K, V]{name: name, prefix: prefix, client: client, logger: logger}
}

func (r *Redis[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var value V
	raw, err := r.client.Get(ctx, r.prefix+key.CacheKey()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis get failed", zap.String("cache", r.name), zap.Error(err))
		}
		metrics.CacheLookups.WithLabelValues(r.name, "miss").Inc()
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		r.logger.Warn("redis value decode failed", zap.String("cache", r.name), zap.Error(err))
		metrics.CacheLookups.WithLabelValues(r.name, "miss").Inc()
		return value, false
	}
	metrics.CacheLookups.WithLabelValues(r.name, "hit").Inc()
	return value, true
}

func (r *Redis[K, V]) Set(ctx context.Context, key K, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("redis value encode failed", zap.String("cache", r.name), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key.CacheKey(), raw, key.TTL()).Err(); err != nil {
		r.logger.Warn("redis set failed", zap.String("cache", r.name), zap.Error(err))
	}
}
