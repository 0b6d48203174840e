package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

const draftActivityKey = "drafts:activity"

// SaveDraft stores the draft as one JSON value and records its last activity
// for the abandonment sweep.
func (c *RedisCache) SaveDraft(ctx context.Context, d *domain.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, draftKey(d.ID), payload, c.draftTTL)
	pipe.ZAdd(ctx, draftActivityKey, redis.Z{Score: float64(d.UpdatedAt.Unix()), Member: d.ID})
	_, err = pipe.Exec(ctx)
	return err
}

// LoadDraft returns nil, nil when the draft is absent or expired.
func (c *RedisCache) LoadDraft(ctx context.Context, id string) (*domain.Draft, error) {
	data, err := c.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *RedisCache) DeleteDraft(ctx context.Context, id string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, draftKey(id))
	pipe.ZRem(ctx, draftActivityKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// IdleDrafts lists drafts whose last activity is strictly before cutoff.
func (c *RedisCache) IdleDrafts(ctx context.Context, cutoff time.Time) ([]string, error) {
	return c.client.ZRangeByScore(ctx, draftActivityKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.Unix(), 10),
	}).Result()
}

func draftKey(id string) string {
	return "draft:" + id
}
