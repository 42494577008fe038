package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
)

type CacheRepository interface {
	Get(ctx context.Context, id string) (*models.Campaign, error)
	Set(ctx context.Context, id string, campaign *models.Campaign, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, id string) (*models.Campaign, error) {
	data, err := r.redis.Client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var campaign models.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}

	return &campaign, nil
}

func (r *cacheRepository) Set(ctx context.Context, id string, campaign *models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(id), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, id string) error {
	return r.redis.Client.Del(ctx, r.key(id)).Err()
}

func (r *cacheRepository) key(id string) string {
	return "campaign:" + id
}
