package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/pagination"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/metrics"
)

var tracer = otel.Tracer("github.com/d60-Lab/feedgraph/internal/service")

// FeedService 组装 Home / Following / Explore 三种 feed，以及单帖读取
type FeedService interface {
	// Home 自己 + 关注的人的公开帖子
	Home(ctx context.Context, req FeedRequest) (*FeedPage, error)
	// Following 关注的人的全部顶层帖子，不限可见范围
	Following(ctx context.Context, req FeedRequest) (*FeedPage, error)
	// Explore 最近窗口内的公开帖子，按互动分数重排；分页是近似的
	Explore(ctx context.Context, req FeedRequest) (*FeedPage, error)
	// GetPost 读取单帖并累加浏览数
	GetPost(ctx context.Context, viewerID string, postID int64) (*FeedPost, error)
}

type FeedOptions struct {
	DefaultLimit int
	MaxLimit     int
	// ExploreWindow 只考虑这个时间窗口内发布的帖子
	ExploreWindow time.Duration
	// ExploreOverfetch 排序前按页大小的倍数取候选
	ExploreOverfetch int
}

type feedService struct {
	posts      repository.PostRepository
	follows    repository.FollowRepository
	blocks     repository.BlockRepository
	graph      SocialGraphCache
	visibility VisibilityFilter
	hydrator   InteractionHydrator
	opts       FeedOptions
	now        func() time.Time
}

func NewFeedService(
	posts repository.PostRepository,
	follows repository.FollowRepository,
	blocks repository.BlockRepository,
	graph SocialGraphCache,
	visibility VisibilityFilter,
	hydrator InteractionHydrator,
	opts FeedOptions,
) FeedService {
	if opts.ExploreWindow <= 0 {
		opts.ExploreWindow = 24 * time.Hour
	}
	if opts.ExploreOverfetch <= 0 {
		opts.ExploreOverfetch = 3
	}
	return &feedService{
		posts:      posts,
		follows:    follows,
		blocks:     blocks,
		graph:      graph,
		visibility: visibility,
		hydrator:   hydrator,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *feedService) startSpan(ctx context.Context, name string, req FeedRequest) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Bool("feed.anonymous", req.ViewerID == ""),
		attribute.Int("feed.limit", req.Limit),
		attribute.Bool("feed.has_cursor", req.Cursor != ""),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *feedService) limit(req FeedRequest) int {
	return pagination.ClampLimit(req.Limit, s.opts.DefaultLimit, s.opts.MaxLimit)
}

func (s *feedService) Home(ctx context.Context, req FeedRequest) (page *FeedPage, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "feed.home", req)
	defer func() {
		metrics.ObserveFeed("home", start, err)
		endSpan(span, err)
	}()

	if req.ViewerID == "" {
		return emptyPage(), nil
	}
	authors, err := s.followedAuthors(ctx, req.ViewerID, true)
	if err != nil {
		return nil, err
	}
	return s.chronological(ctx, req, authors, true)
}

func (s *feedService) Following(ctx context.Context, req FeedRequest) (page *FeedPage, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "feed.following", req)
	defer func() {
		metrics.ObserveFeed("following", start, err)
		endSpan(span, err)
	}()

	if req.ViewerID == "" {
		return emptyPage(), nil
	}
	authors, err := s.followedAuthors(ctx, req.ViewerID, false)
	if err != nil {
		return nil, err
	}
	return s.chronological(ctx, req, authors, false)
}

// followedAuthors 关注集合（可选加上自己）减去屏蔽集合
func (s *feedService) followedAuthors(ctx context.Context, viewerID string, includeSelf bool) ([]string, error) {
	following, err := s.graph.GetFollowing(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	excluded, err := s.visibility.Exclusions(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	candidates := NewIDSet()
	for id := range following {
		candidates.Add(id)
	}
	if includeSelf {
		candidates.Add(viewerID)
	}
	return candidates.Without(excluded).Sorted(), nil
}

// chronological 按 id 倒序的游标分页
func (s *feedService) chronological(ctx context.Context, req FeedRequest, authors []string, publicOnly bool) (*FeedPage, error) {
	if len(authors) == 0 {
		return emptyPage(), nil
	}
	limit := s.limit(req)
	rows, err := s.posts.ListTopLevel(ctx, repository.PostQuery{
		AuthorIDs:  authors,
		PublicOnly: publicOnly,
		BeforeID:   pagination.DecodeCursor(req.Cursor),
		Limit:      pagination.Overfetch(limit),
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, req.ViewerID, rows, limit)
}

func (s *feedService) Explore(ctx context.Context, req FeedRequest) (page *FeedPage, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "feed.explore", req)
	defer func() {
		metrics.ObserveFeed("explore", start, err)
		endSpan(span, err)
	}()

	// 匿名用户没有身份可供过滤
	var excluded []string
	if req.ViewerID != "" {
		set, err := s.visibility.Exclusions(ctx, req.ViewerID)
		if err != nil {
			return nil, err
		}
		excluded = set.Sorted()
	}

	limit := s.limit(req)
	fetch := limit * s.opts.ExploreOverfetch
	if fetch < pagination.Overfetch(limit) {
		fetch = pagination.Overfetch(limit)
	}
	rows, err := s.posts.ListTopLevel(ctx, repository.PostQuery{
		ExcludeAuthorIDs: excluded,
		PublicOnly:       true,
		CreatedAfter:     s.now().Add(-s.opts.ExploreWindow),
		BeforeID:         pagination.DecodeCursor(req.Cursor),
		Limit:            fetch,
	})
	if err != nil {
		return nil, err
	}

	// 按分数重排后再分页：游标取本页最后一条的 id，下一页只看比它小的 id，
	// 因此跨页可能重复或遗漏
	Rank(rows)
	if len(rows) > pagination.Overfetch(limit) {
		rows = rows[:pagination.Overfetch(limit)]
	}
	span.SetAttributes(attribute.Int("feed.candidates", len(rows)))
	return s.finish(ctx, req.ViewerID, rows, limit)
}

func (s *feedService) finish(ctx context.Context, viewerID string, rows []*model.Post, limit int) (*FeedPage, error) {
	rows, pg := pagination.Slice(rows, limit, func(p *model.Post) int64 { return p.ID })
	data, err := s.hydrator.Hydrate(ctx, viewerID, rows)
	if err != nil {
		return nil, err
	}
	return &FeedPage{Data: data, Pagination: pg}, nil
}

func (s *feedService) GetPost(ctx context.Context, viewerID string, postID int64) (fp *FeedPost, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "feed.get_post", trace.WithAttributes(attribute.Int64("post.id", postID)))
	defer func() {
		if errors.Is(err, ErrPostNotFound) {
			metrics.ObserveFeed("post", start, nil)
			span.End()
			return
		}
		metrics.ObserveFeed("post", start, err)
		endSpan(span, err)
	}()

	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.canView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 不可见与不存在返回同样的结果
		return nil, ErrPostNotFound
	}

	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.ViewCount++

	out, err := s.hydrator.Hydrate(ctx, viewerID, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// canView 单帖可见性：拉黑任一方向不可见；静音不影响直接访问
func (s *feedService) canView(ctx context.Context, viewerID string, post *model.Post) (bool, error) {
	if viewerID != "" && viewerID == post.AuthorID {
		return true, nil
	}
	if viewerID != "" {
		blocked, err := s.blocks.ExistsBetween(ctx, viewerID, post.AuthorID)
		if err != nil {
			return false, err
		}
		if blocked {
			return false, nil
		}
	}

	switch post.Visibility {
	case model.VisibilityPublic:
		return true, nil
	case model.VisibilityFollowers:
		if viewerID == "" {
			return false, nil
		}
		// 直接查库，不依赖可能过期的缓存
		return s.follows.IsAcceptedFollower(ctx, viewerID, post.AuthorID)
	default:
		return false, nil
	}
}
