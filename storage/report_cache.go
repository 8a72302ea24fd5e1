package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix   = "salesdash"
	generationKey = cachePrefix + ":generation"
)

// ReportCache stores computed dashboard payloads in Redis. Entries are
// namespaced by a generation counter, so Invalidate drops every entry at
// once without scanning keys.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache connects to the Redis server at url (redis://...).
func NewReportCache(ctx context.Context, url string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewReportCacheWithClient(client, ttl), nil
}

func NewReportCacheWithClient(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ReportCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", fmt.Errorf("redis: read generation: %w", err)
	}
	return cachePrefix + ":v" + strconv.FormatInt(gen, 10) + ":" + key, nil
}

// Get looks up key under the current generation and decodes a hit into dst.
// The returned slot pins that generation; Set writes to it even after an
// Invalidate, so a value computed before new data lands is never served
// from the newer generation.
func (c *ReportCache) Get(ctx context.Context, key string, dst any) (string, bool, error) {
	slot, err := c.key(ctx, key)
	if err != nil {
		return "", false, err
	}
	body, err := c.client.Get(ctx, slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return slot, false, nil
	}
	if err != nil {
		return slot, false, fmt.Errorf("redis: get %s: %w", slot, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return slot, false, fmt.Errorf("redis: decode %s: %w", slot, err)
	}
	return slot, true, nil
}

// Set stores value in a slot returned by Get.
func (c *ReportCache) Set(ctx context.Context, slot string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", slot, err)
	}
	if err := c.client.Set(ctx, slot, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", slot, err)
	}
	return nil
}

// Invalidate bumps the generation. Old entries expire through their TTL.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis: bump generation: %w", err)
	}
	return nil
}

func (c *ReportCache) Close() error {
	return c.client.Close()
}
