// Package cache keeps published curriculum listings close to the request path.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/elan/internal/models"
	"github.com/terraincognita07/elan/internal/services"
)

const keyPrefix = "elan:catalog:"

var (
	_ services.CurriculumCache = (*RedisCatalogCache)(nil)
	_ services.CurriculumCache = NopCatalogCache{}
)

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(ctx context.Context, options Options) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         options.Addr,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCatalogCacheWithClient(client, options.TTL), nil
}

func NewRedisCatalogCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func (c *RedisCatalogCache) GetDays(ctx context.Context, programSlug string) ([]models.Unit, bool, error) {
	raw, err := c.client.Get(ctx, daysKey(programSlug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog days: %w", err)
	}

	units := make([]models.Unit, 0)
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, false, fmt.Errorf("decode catalog days: %w", err)
	}
	return units, true, nil
}

func (c *RedisCatalogCache) SetDays(ctx context.Context, programSlug string, units []models.Unit) error {
	payload, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("encode catalog days: %w", err)
	}
	if err := c.client.Set(ctx, daysKey(programSlug), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set catalog days: %w", err)
	}
	return nil
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context, programSlug string) error {
	if err := c.client.Del(ctx, daysKey(programSlug)).Err(); err != nil {
		return fmt.Errorf("invalidate catalog days: %w", err)
	}
	return nil
}

func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

func daysKey(programSlug string) string {
	return keyPrefix + programSlug + ":days"
}

// NopCatalogCache always misses.
type NopCatalogCache struct{}

func (NopCatalogCache) GetDays(context.Context, string) ([]models.Unit, bool, error) {
	return nil, false, nil
}

func (NopCatalogCache) SetDays(context.Context, string, []models.Unit) error {
	return nil
}

func (NopCatalogCache) Invalidate(context.Context, string) error {
	return nil
}
