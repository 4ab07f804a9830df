package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/cache"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/metrics"
)

const (
	trendingKey       = "trending:hashtags"
	trendingCacheName = "trending"
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// TrendingService 热门话题。缓存的是前 size 名的近似快照，不是实时排行。
type TrendingService interface {
	TopHashtags(ctx context.Context, n int) ([]*model.Hashtag, error)
	RecordHashtags(ctx context.Context, tags []string) error
}

type trendingService struct {
	hashtags repository.HashtagRepository
	cache    cache.Cache
	ttl      time.Duration
	size     int
}

func NewTrendingService(hashtags repository.HashtagRepository, c cache.Cache, ttl time.Duration, size int) TrendingService {
	if size <= 0 {
		size = 10
	}
	return &trendingService{hashtags: hashtags, cache: c, ttl: ttl, size: size}
}

func (s *trendingService) TopHashtags(ctx context.Context, n int) ([]*model.Hashtag, error) {
	if n <= 0 || n > s.size {
		n = s.size
	}

	data, err := s.cache.Get(ctx, trendingKey)
	if err == nil {
		var top []*model.Hashtag
		if uErr := json.Unmarshal(data, &top); uErr == nil {
			metrics.RecordCacheLookup(trendingCacheName, metrics.ResultHit)
			return head(top, n), nil
		}
	}
	miss := err == nil || errors.Is(err, cache.ErrCacheMiss)
	if miss {
		metrics.RecordCacheLookup(trendingCacheName, metrics.ResultMiss)
	} else {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		metrics.RecordCacheLookup(trendingCacheName, metrics.ResultError)
		logger.Warn("trending cache unavailable", zap.Error(err))
	}

	top, err := s.hashtags.Top(ctx, s.size)
	if err != nil {
		return nil, err
	}
	if miss {
		if payload, mErr := json.Marshal(top); mErr == nil {
			if sErr := s.cache.Set(ctx, trendingKey, payload, s.ttl); sErr != nil {
				logger.Warn("trending cache populate failed", zap.Error(sErr))
			}
		}
	}
	return head(top, n), nil
}

func head(top []*model.Hashtag, n int) []*model.Hashtag {
	if len(top) > n {
		return top[:n]
	}
	return top
}

// RecordHashtags 计数 +1。快照允许滞后，缓存删除失败只记日志。
func (s *trendingService) RecordHashtags(ctx context.Context, tags []string) error {
	tags = NormalizeHashtags(tags)
	if len(tags) == 0 {
		return nil
	}
	if err := s.hashtags.Increment(ctx, tags); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, trendingKey); err != nil {
		logger.Warn("trending cache delete failed", zap.Error(err))
	}
	return nil
}

// NormalizeHashtags 去掉 #、转小写、去重，保持首次出现的顺序
func NormalizeHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimLeft(t, "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ExtractHashtags 从正文中提取话题
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return NormalizeHashtags(tags)
}
