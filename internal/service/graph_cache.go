package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/cache"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/metrics"
)

const (
	graphCacheName = "graph"

	// upper bound for a load shared by collapsed misses
	collapsedLoadTimeout = 5 * time.Second
)

// SocialGraphCache serves a user's ACCEPTED following set. Reads go through
// the shared cache and fall back to the follow table on miss or on any cache
// backend failure. Invalidate must be called in the same request as every
// follow graph mutation.
type SocialGraphCache interface {
	GetFollowing(ctx context.Context, userID string) (IDSet, error)
	Invalidate(ctx context.Context, userIDs ...string) error
}

type socialGraphCache struct {
	cache   cache.Cache
	follows repository.FollowRepository
	ttl     time.Duration
	// nil unless concurrent misses should share one load
	group *singleflight.Group
}

func NewSocialGraphCache(c cache.Cache, follows repository.FollowRepository, ttl time.Duration, collapseMisses bool) SocialGraphCache {
	g := &socialGraphCache{cache: c, follows: follows, ttl: ttl}
	if collapseMisses {
		g.group = &singleflight.Group{}
	}
	return g
}

func followingKey(userID string) string {
	return fmt.Sprintf("graph:following:%s", userID)
}

func (g *socialGraphCache) GetFollowing(ctx context.Context, userID string) (IDSet, error) {
	key := followingKey(userID)

	data, err := g.cache.Get(ctx, key)
	switch {
	case err == nil:
		var ids []string
		if uErr := json.Unmarshal(data, &ids); uErr == nil {
			metrics.RecordCacheLookup(graphCacheName, metrics.ResultHit)
			return NewIDSet(ids...), nil
		}
		// 损坏的条目按未命中处理，重新回源覆盖
		logger.Warn("graph cache entry corrupt", zap.String("key", key))
		metrics.RecordCacheLookup(graphCacheName, metrics.ResultMiss)
		return g.populate(ctx, userID, key)
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordCacheLookup(graphCacheName, metrics.ResultMiss)
		return g.populate(ctx, userID, key)
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// 缓存不可用时直接查库，且不回填
		metrics.RecordCacheLookup(graphCacheName, metrics.ResultError)
		logger.Warn("graph cache unavailable, reading follow table",
			zap.String("user_id", userID), zap.Error(err))
		ids, lErr := g.follows.ListFollowingIDs(ctx, userID)
		if lErr != nil {
			return nil, lErr
		}
		return NewIDSet(ids...), nil
	}
}

func (g *socialGraphCache) populate(ctx context.Context, userID, key string) (IDSet, error) {
	load := func(ctx context.Context) ([]string, error) {
		ids, err := g.follows.ListFollowingIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		payload, err := json.Marshal(ids)
		if err == nil {
			if sErr := g.cache.Set(ctx, key, payload, g.ttl); sErr != nil {
				logger.Warn("graph cache populate failed", zap.String("key", key), zap.Error(sErr))
			}
		}
		logger.Debug("graph cache populated", zap.String("user_id", userID), zap.Int("size", len(ids)))
		return ids, nil
	}

	if g.group == nil {
		ids, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return NewIDSet(ids...), nil
	}

	// 合并后的回源不能跟随某一个调用方取消，每个调用方只等待自己的 ctx
	ch := g.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), collapsedLoadTimeout)
		defer cancel()
		return load(lctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return NewIDSet(res.Val.([]string)...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *socialGraphCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = followingKey(id)
	}
	if err := g.cache.Delete(ctx, keys...); err != nil {
		metrics.RecordInvalidationFailure()
		logger.Error("graph cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrInvalidation, err)
	}
	return nil
}
