package router

import (
	"context"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/feedgraph/config"
	_ "github.com/d60-Lab/feedgraph/docs"
	"github.com/d60-Lab/feedgraph/internal/api/handler"
	"github.com/d60-Lab/feedgraph/internal/api/middleware"
	"github.com/d60-Lab/feedgraph/pkg/metrics"
	"github.com/d60-Lab/feedgraph/pkg/response"
)

// HealthCheck 探测下游依赖
type HealthCheck func(ctx context.Context) error

func New(cfg *config.Config, h *handler.Handler, health HealthCheck) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(
		sentrygin.New(sentrygin.Options{Repanic: true}),
		gin.Recovery(),
		otelgin.Middleware(cfg.Tracing.ServiceName),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, response.Response{Code: http.StatusServiceUnavailable, Message: err.Error()})
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	secret := cfg.Auth.JWTSecret

	v1 := r.Group("/api/v1", middleware.RequestLogger())

	// 登录可选：匿名用户不做屏蔽过滤
	open := v1.Group("", middleware.AuthOptional(secret), limiter.Handler())
	open.GET("/feed/explore", h.Explore)
	open.GET("/posts/:id", h.GetPost)
	open.GET("/trending/hashtags", h.TrendingHashtags)

	authed := v1.Group("", middleware.AuthRequired(secret), limiter.Handler())
	authed.GET("/feed/home", h.Home)
	authed.GET("/feed/following", h.Following)

	rel := authed.Group("/relations")
	rel.POST("/follow", h.Follow)
	rel.POST("/unfollow", h.Unfollow)
	rel.POST("/block", h.Block)
	rel.POST("/unblock", h.Unblock)
	rel.POST("/mute", h.Mute)
	rel.POST("/unmute", h.Unmute)
	rel.GET("/requests", h.ListPendingRequests)
	rel.POST("/requests/accept", h.AcceptFollow)
	rel.POST("/requests/reject", h.RejectFollow)

	return r
}
