package service

import (
	"context"
	"fmt"

	"electromatrix/internal/cache"
	"electromatrix/internal/model"
	"electromatrix/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuestionPool serves the whole grid pool, reading through the Redis pool
// cache when one is configured. Concurrent misses share one store read.
type QuestionPool struct {
	repo  repository.GridQuestionRepo
	cache cache.PoolCache // optional
	sf    singleflight.Group
	log   *zap.Logger
}

// NewQuestionPool creates a pool reader; poolCache may be nil
func NewQuestionPool(repo repository.GridQuestionRepo, poolCache cache.PoolCache, log *zap.Logger) *QuestionPool {
	return &QuestionPool{repo: repo, cache: poolCache, log: log}
}

// All returns every grid question
func (p *QuestionPool) All(ctx context.Context) ([]*model.GridQuestion, error) {
	if p.cache != nil {
		pool, err := p.cache.GetPool(ctx)
		if err != nil {
			p.log.Warn("pool cache read failed", zap.Error(err))
		} else if len(pool) > 0 {
			return pool, nil
		}
	}

	v, err, _ := p.sf.Do("pool", func() (interface{}, error) {
		pool, err := p.repo.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load question pool: %w", err)
		}
		if p.cache != nil && len(pool) > 0 {
			if err := p.cache.SetPool(ctx, pool); err != nil {
				p.log.Warn("pool cache write failed", zap.Error(err))
			}
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.GridQuestion), nil
}

// Invalidate drops the cached pool after the pool content changes
func (p *QuestionPool) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx)
}
