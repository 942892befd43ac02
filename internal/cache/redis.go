// Package cache provides a Redis-backed raster store so page renders survive
// server restarts and can be shared between instances.
package cache

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
)

// DefaultTTL applies when NewRedisStore is given a non-positive TTL.
const DefaultTTL = time.Hour

// RedisStore keeps rasterized pages in Redis as PNG bytes.
// It implements imaging.RasterStore.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ imaging.RasterStore = (*RedisStore)(nil)

// NewRedisStore connects to the Redis server at url and verifies it answers.
func NewRedisStore(url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}, nil
}

// Key namespaces a raster key under the store prefix.
func (s *RedisStore) Key(parts ...string) string {
	return joinKey(s.prefix, parts...)
}

func joinKey(prefix string, parts ...string) string {
	if prefix == "" {
		return strings.Join(parts, ":")
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// Get returns the cached raster for key. A miss is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (image.Image, bool, error) {
	data, err := s.client.Get(ctx, s.Key("raster", key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read raster: %w", err)
	}

	img, err := imaging.DecodePNG(data)
	if err != nil {
		// A corrupt entry is treated as a miss and dropped.
		s.client.Del(ctx, s.Key("raster", key))
		return nil, false, nil
	}
	return img, true, nil
}

// Put stores img under key for the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key string, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key("raster", key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store raster: %w", err)
	}
	return nil
}

// Delete removes the raster stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.Key("raster", key)).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
