package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/redis/go-redis/v9"
)

// 商品詳細のcache-aside用Redisキャッシュ。
// TTLにジッターを足して同時失効を避ける。
type ProductRedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewProductRedisCache(client *redis.Client) *ProductRedisCache {
	return &ProductRedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *ProductRedisCache) Get(ctx context.Context, productID int64) (*model.Product, error) {
	key := cacheKey(productID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p model.Product
	if err2 := json.Unmarshal(data, &p); err2 != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err2)
	}

	return &p, nil
}

func (r *ProductRedisCache) Set(ctx context.Context, p *model.Product) error {
	key := cacheKey(p.ID)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *ProductRedisCache) Delete(ctx context.Context, productID int64) error {
	key := cacheKey(productID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}
