package handler

import (
	"github.com/d60-Lab/feedgraph/internal/service"
)

// Handler 汇总 HTTP 层依赖的服务
type Handler struct {
	feedService     service.FeedService
	relService      service.RelationshipService
	trendingService service.TrendingService
}

func NewHandler(feed service.FeedService, rel service.RelationshipService, trending service.TrendingService) *Handler {
	return &Handler{feedService: feed, relService: rel, trendingService: trending}
}
