package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/internal/api/handler"
	"github.com/d60-Lab/feedgraph/internal/api/router"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/cache"
	"github.com/d60-Lab/feedgraph/pkg/database"
	"github.com/d60-Lab/feedgraph/pkg/logger"
	"github.com/d60-Lab/feedgraph/pkg/tracing"
)

const memoryCacheEntries = 100000

// @title Feed Graph API
// @version 1.0
// @description Feed assembly and social-graph visibility engine.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}

	sharedCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)
	blocks := repository.NewBlockRepository(db)
	mutes := repository.NewMuteRepository(db)
	interactions := repository.NewInteractionRepository(db)
	hashtags := repository.NewHashtagRepository(db)

	graph := service.NewSocialGraphCache(sharedCache, follows, cfg.Feed.GraphCacheTTL, cfg.Feed.CollapseCacheMisses)
	feed := service.NewFeedService(
		posts, follows, blocks, graph,
		service.NewVisibilityFilter(blocks, mutes),
		service.NewInteractionHydrator(interactions),
		service.FeedOptions{
			DefaultLimit:     cfg.Feed.DefaultLimit,
			MaxLimit:         cfg.Feed.MaxLimit,
			ExploreWindow:    cfg.Feed.ExploreWindow,
			ExploreOverfetch: cfg.Feed.ExploreOverfetch,
		},
	)
	rel := service.NewRelationshipService(users, follows, blocks, mutes, graph)
	trending := service.NewTrendingService(hashtags, sharedCache, cfg.Feed.TrendingTTL, cfg.Feed.TrendingSize)

	h := handler.NewHandler(feed, rel, trending)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.New(cfg, h, dbHealth(db)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// newCache 优先使用 redis。redis 不可达时默认启动失败；只有 allow_fallback
// 打开时才退回进程内 LRU，此时失效只作用于本实例
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(cfg.Redis)
		rc := cache.NewRedisCache(client)
		pctx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
		defer cancel()
		err := rc.Ping(pctx)
		if err == nil {
			logger.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
			return rc, func() { _ = client.Close() }, nil
		}
		_ = client.Close()
		if !cfg.Redis.AllowFallback {
			return nil, nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}
		logger.Warn("redis unreachable, falling back to in-process cache",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	mc, err := cache.NewMemoryCache(memoryCacheEntries)
	if err != nil {
		return nil, nil, err
	}
	return mc, func() {}, nil
}

func dbHealth(db *gorm.DB) router.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
