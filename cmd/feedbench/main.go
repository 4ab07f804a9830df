package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/config"
	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/pagination"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/internal/service"
	"github.com/d60-Lab/feedgraph/pkg/cache"
	"github.com/d60-Lab/feedgraph/pkg/database"
)

// missCache never holds anything, so every graph read scans the follow table.
type missCache struct{}

func (missCache) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }

func (missCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (missCache) Delete(context.Context, ...string) error { return nil }

// countingFollows counts follow-table scans issued by the graph cache.
type countingFollows struct {
	repository.FollowRepository
	scans atomic.Int64
}

func (c *countingFollows) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	c.scans.Add(1)
	return c.FollowRepository.ListFollowingIDs(ctx, followerID)
}

type request struct {
	viewer string
	pages  int
	limit  int
}

type scenarioResult struct {
	durations []time.Duration
	scans     int64
	cacheKeys int
	memBytes  int64
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	users := envInt("USERS", 2000)
	following := envInt("FOLLOWING", 200)
	posts := envInt("POSTS", 20000)
	requests := envInt("REQUESTS", 3000)

	fmt.Println("Setting up test data...")
	viewers := seed(ctx, db, users, following, posts)
	fmt.Printf("Test data ready: %d users following %d each, %d posts\n", users, following, posts)

	trending := service.NewTrendingService(repository.NewHashtagRepository(db),
		must(cache.NewMemoryCache(16)), cfg.Feed.TrendingTTL, cfg.Feed.TrendingSize)
	recordTrending(ctx, db, trending)

	reqs := makeRequests(viewers, requests)

	results := map[string]scenarioResult{}
	order := []string{"No cache", "LRU cache"}
	results["No cache"] = runScenario(ctx, db, cfg, missCache{}, reqs)
	results["LRU cache"] = runScenario(ctx, db, cfg, must(cache.NewMemoryCache(users)), reqs)

	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		rc := cache.NewRedisCache(client)
		if err := rc.Ping(ctx); err != nil {
			fmt.Printf("Skipping redis scenario: %v\n", err)
		} else {
			client.FlushDB(ctx)
			res := runScenario(ctx, db, cfg, rc, reqs)
			res.cacheKeys = len(must(client.Keys(ctx, "graph:following:*").Result()))
			if info, err := client.Info(ctx, "memory").Result(); err == nil {
				res.memBytes = parseRedisMemory(info)
			}
			results["Redis cache"] = res
			order = append(order, "Redis cache")
		}
	}

	fmt.Printf("\nHome feed latency (%d requests, %d users)\n", len(reqs), len(viewers))
	for _, name := range order {
		r := results[name]
		fmt.Printf("%-12s avg=%v p95=%v p99=%v follow_scans=%d cache_keys=%d mem=%s\n",
			name, avg(r.durations), pct(r.durations, 0.95), pct(r.durations, 0.99),
			r.scans, r.cacheKeys, formatBytes(r.memBytes))
	}
}

func seed(ctx context.Context, db *gorm.DB, users, following, posts int) []string {
	for _, t := range []string{"likes", "reposts", "bookmarks", "posts", "follows", "blocks", "mutes", "users", "hashtags"} {
		mustDo(db.Exec("DELETE FROM " + t).Error)
	}

	rnd := rand.New(rand.NewSource(42))
	ids := make([]string, users)
	rows := make([]model.User, users)
	for i := range rows {
		ids[i] = uuid.NewString()
		rows[i] = model.User{ID: ids[i], Username: fmt.Sprintf("user_%d", i)}
	}
	mustDo(db.CreateInBatches(&rows, 1000).Error)

	follows := make([]model.Follow, 0, users*following)
	for i, id := range ids {
		for j := 1; j <= following && j < users; j++ {
			follows = append(follows, model.Follow{
				ID:          uuid.NewString(),
				FollowerID:  id,
				FollowingID: ids[(i+j)%users],
				Status:      model.FollowAccepted,
			})
		}
	}
	mustDo(db.CreateInBatches(&follows, 1000).Error)

	topics := []string{"golang", "redis", "postgres", "feeds", "graphs", "caching", "Golang"}
	visibilities := []model.Visibility{model.VisibilityPublic, model.VisibilityPublic, model.VisibilityPublic, model.VisibilityFollowers}
	postRows := make([]model.Post, posts)
	for i := range postRows {
		postRows[i] = model.Post{
			AuthorID:   ids[rnd.Intn(users)],
			Visibility: visibilities[rnd.Intn(len(visibilities))],
			Content:    fmt.Sprintf("post %d #%s #bench", i, topics[rnd.Intn(len(topics))]),
			LikeCount:  int64(rnd.Intn(50)),
		}
	}
	mustDo(db.CreateInBatches(&postRows, 1000).Error)

	// 每个用户随机点赞一部分帖子，让装饰查询有命中
	interactions := repository.NewInteractionRepository(db)
	for _, id := range ids[:min(users, 200)] {
		for k := 0; k < 20; k++ {
			mustDo(interactions.Like(ctx, id, postRows[rnd.Intn(posts)].ID))
		}
	}

	blocks := repository.NewBlockRepository(db)
	mutes := repository.NewMuteRepository(db)
	for i := 0; i < users/10; i++ {
		mustDo(blocks.Create(ctx, ids[rnd.Intn(users)], ids[rnd.Intn(users)]))
		mustDo(mutes.Create(ctx, ids[rnd.Intn(users)], ids[rnd.Intn(users)]))
	}
	return ids
}

// recordTrending 走发帖路径的话题计数，然后打印热门榜
func recordTrending(ctx context.Context, db *gorm.DB, trending service.TrendingService) {
	var contents []string
	mustDo(db.Model(&model.Post{}).Order("id").Pluck("content", &contents).Error)
	start := time.Now()
	for _, content := range contents {
		mustDo(trending.RecordHashtags(ctx, service.ExtractHashtags(content)))
	}
	top := must(trending.TopHashtags(ctx, 5))
	fmt.Printf("Recorded hashtags for %d posts in %v\n", len(contents), time.Since(start))
	for _, h := range top {
		fmt.Printf("  #%-10s %d\n", h.Tag, h.PostCount)
	}
}

func runScenario(ctx context.Context, db *gorm.DB, cfg *config.Config, c cache.Cache, reqs []request) scenarioResult {
	follows := &countingFollows{FollowRepository: repository.NewFollowRepository(db)}
	blocks := repository.NewBlockRepository(db)
	graph := service.NewSocialGraphCache(c, follows, cfg.Feed.GraphCacheTTL, cfg.Feed.CollapseCacheMisses)
	feed := service.NewFeedService(
		repository.NewPostRepository(db), follows, blocks, graph,
		service.NewVisibilityFilter(blocks, repository.NewMuteRepository(db)),
		service.NewInteractionHydrator(repository.NewInteractionRepository(db)),
		service.FeedOptions{
			DefaultLimit:     cfg.Feed.DefaultLimit,
			MaxLimit:         cfg.Feed.MaxLimit,
			ExploreWindow:    cfg.Feed.ExploreWindow,
			ExploreOverfetch: cfg.Feed.ExploreOverfetch,
		},
	)

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		cursor := ""
		for p := 0; p < r.pages; p++ {
			page, err := feed.Home(ctx, service.FeedRequest{ViewerID: r.viewer, Cursor: cursor, Limit: r.limit})
			if err != nil {
				panic(err)
			}
			if !page.Pagination.HasMore {
				break
			}
			cursor = *page.Pagination.NextCursor
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")
	return scenarioResult{durations: out, scans: follows.scans.Load()}
}

func makeRequests(viewers []string, n int) []request {
	limits := []int{10, 20, pagination.DefaultLimit * 2}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(7))
	// 80% 的请求集中在 20% 的活跃用户上
	hot := viewers[:max(1, len(viewers)/5)]
	for i := range out {
		viewer := viewers[rnd.Intn(len(viewers))]
		if rnd.Float64() < 0.8 {
			viewer = hot[rnd.Intn(len(hot))]
		}
		pages := 1
		if rnd.Float64() > 0.72 {
			pages = 2 + rnd.Intn(4)
		}
		out[i] = request{viewer: viewer, pages: pages, limit: limits[rnd.Intn(len(limits))]}
	}
	return out
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
