package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	assetsTTL time.Duration
	draftTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, assetsTTL, draftTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		assetsTTL, draftTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, assetsTTL, draftTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, assetsTTL: assetsTTL, draftTTL: draftTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetAssets(ctx context.Context) ([]domain.Asset, error) {
	data, err := c.client.Get(ctx, assetsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var assets []domain.Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *RedisCache) SetAssets(ctx context.Context, assets []domain.Asset) error {
	payload, err := json.Marshal(assets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, assetsKey(), payload, c.assetsTTL).Err()
}

// AcquireSlotLock takes one lock per hour of the window. It either holds all
// of them on return or none.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, assetID string, start time.Time, hours int, ttl time.Duration) (bool, error) {
	acquired := make([]string, 0, hours)
	for h := 0; h < hours; h++ {
		key := slotLockKey(assetID, start.Add(time.Duration(h)*time.Hour))
		ok, err := c.client.SetNX(ctx, key, "locked", ttl).Result()
		if err != nil || !ok {
			if len(acquired) > 0 {
				_ = c.client.Del(ctx, acquired...).Err()
			}
			return false, err
		}
		acquired = append(acquired, key)
	}
	return true, nil
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, assetID string, start time.Time, hours int) error {
	keys := make([]string, 0, hours)
	for h := 0; h < hours; h++ {
		keys = append(keys, slotLockKey(assetID, start.Add(time.Duration(h)*time.Hour)))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func assetsKey() string {
	return "cache:assets"
}

func slotLockKey(assetID string, hour time.Time) string {
	return fmt.Sprintf("lock:asset:%s:slot:%s", assetID, hour.UTC().Format("2006-01-02T15"))
}
