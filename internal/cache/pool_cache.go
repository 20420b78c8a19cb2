package cache

import (
	"context"
	"encoding/json"
	"time"

	"electromatrix/internal/model"

	"github.com/redis/go-redis/v9"
)

const poolKey = "quiz:pool:grid"

// PoolCache handles Redis operations for the grid question pool
type PoolCache interface {
	GetPool(ctx context.Context) ([]*model.GridQuestion, error)
	SetPool(ctx context.Context, pool []*model.GridQuestion) error
	Invalidate(ctx context.Context) error
}

// cachedQuestion keeps the answer key, which the API model never serialises
type cachedQuestion struct {
	ID            string             `json:"id"`
	Prompt        string             `json:"prompt"`
	Type          model.QuestionType `json:"type"`
	Options       []model.Option     `json:"options,omitempty"`
	CorrectAnswer string             `json:"correctAnswer"`
	ImageURL      string             `json:"imageUrl,omitempty"`
	Pool          string             `json:"pool,omitempty"`
}

type poolCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPoolCache creates a new pool cache
func NewPoolCache(client *redis.Client, ttl time.Duration) PoolCache {
	return &poolCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *poolCache) SetPool(ctx context.Context, pool []*model.GridQuestion) error {
	rows := make([]cachedQuestion, len(pool))
	for i, q := range pool {
		rows[i] = cachedQuestion{
			ID:            q.ID,
			Prompt:        q.Prompt,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			ImageURL:      q.ImageURL,
			Pool:          q.Pool,
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, poolKey, data, c.ttl).Err()
}

// GetPool returns nil, nil on a miss
func (c *poolCache) GetPool(ctx context.Context) ([]*model.GridQuestion, error) {
	data, err := c.client.Get(ctx, poolKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []cachedQuestion
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	pool := make([]*model.GridQuestion, len(rows))
	for i, r := range rows {
		pool[i] = &model.GridQuestion{
			ID:            r.ID,
			Prompt:        r.Prompt,
			Type:          r.Type,
			Options:       r.Options,
			CorrectAnswer: r.CorrectAnswer,
			ImageURL:      r.ImageURL,
			Pool:          r.Pool,
		}
	}
	return pool, nil
}

func (c *poolCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, poolKey).Err()
}
