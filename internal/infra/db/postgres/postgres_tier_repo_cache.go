package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
	"realestate-marketplace/internal/infra/metrics"
	red "realestate-marketplace/internal/infra/redis"
)

var _ repository.PromotionTierRepository = (*tierRepoCacheDecorator)(nil)

// tierRepoCacheDecorator caches tier reference data in Redis. Tiers are
// static during a promotion's lifetime and read on every price quote, so a
// read-through cache keeps those lookups off the database.
type tierRepoCacheDecorator struct {
	inner repository.PromotionTierRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTierRepoCacheDecorator(inner repository.PromotionTierRepository, cache red.RedisClient, ttl time.Duration) repository.PromotionTierRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tierRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *tierRepoCacheDecorator) FindByType(ctx context.Context, tx repository.Tx, tierType model.TierType) (*model.PromotionTier, error) {
	key := fmt.Sprintf("tier:%s", tierType)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("tier", "hit")
		var tier model.PromotionTier
		if json.Unmarshal([]byte(val), &tier) == nil {
			return &tier, nil
		}
	}

	metrics.IncCacheRequest("tier", "miss")
	tier, err := d.inner.FindByType(ctx, tx, tierType)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(tier); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return tier, nil
}

func (d *tierRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, t *model.PromotionTier) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("tier:%s", t.Type), "tiers:active")
	return d.inner.Save(ctx, tx, t)
}

func (d *tierRepoCacheDecorator) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PromotionTier, error) {
	const key = "tiers:active"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("tier_list", "hit")
		var tiers []*model.PromotionTier
		if json.Unmarshal([]byte(val), &tiers) == nil {
			return tiers, nil
		}
	}

	metrics.IncCacheRequest("tier_list", "miss")
	tiers, err := d.inner.ListActive(ctx, tx)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(tiers); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return tiers, nil
}
