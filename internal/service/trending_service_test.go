package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/cache"
)

func tags(t *testing.T, svc TrendingService, n int) []string {
	t.Helper()
	top, err := svc.TopHashtags(ctx, n)
	require.NoError(t, err)
	out := make([]string, len(top))
	for i, h := range top {
		out[i] = h.Tag
	}
	return out
}

func TestTrending_CachedSnapshot(t *testing.T) {
	e := newEngine(t, nil)
	repo := repository.NewHashtagRepository(e.db)
	svc := NewTrendingService(repo, e.cache, 5*time.Minute, 3)

	require.NoError(t, svc.RecordHashtags(ctx, []string{"#Go", "go", "redis"}))
	require.NoError(t, svc.RecordHashtags(ctx, []string{"gorm", "go"}))
	assert.Equal(t, []string{"go", "gorm", "redis"}, tags(t, svc, 0))
	assert.Equal(t, []string{"go"}, tags(t, svc, 1))

	// 直接写库不会反映到快照，直到缓存过期或被记录路径清除
	require.NoError(t, repo.Increment(ctx, []string{"sqlite", "sqlite", "sqlite"}))
	assert.Equal(t, []string{"go", "gorm", "redis"}, tags(t, svc, 3))

	require.NoError(t, svc.RecordHashtags(ctx, []string{"sqlite"}))
	assert.Equal(t, []string{"sqlite", "go", "gorm"}, tags(t, svc, 3))
}

func TestTrending_CacheOutageReadsDatastore(t *testing.T) {
	e := newEngine(t, brokenCache{})
	svc := NewTrendingService(repository.NewHashtagRepository(e.db), brokenCache{}, time.Minute, 10)

	require.NoError(t, svc.RecordHashtags(ctx, []string{"go"}))
	assert.Equal(t, []string{"go"}, tags(t, svc, 5))
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{"golang", "redis_7", "缓存"},
		ExtractHashtags("shipping #Golang with #redis_7 and #缓存, again #golang"))
	assert.Empty(t, ExtractHashtags("no tags here"))
	assert.Empty(t, NormalizeHashtags([]string{"#", "  "}))
}

func TestTrending_RecordFromPostContent(t *testing.T) {
	e := newEngine(t, nil)
	svc := NewTrendingService(repository.NewHashtagRepository(e.db), e.cache, time.Minute, 10)

	for _, content := range []string{
		"post 1 #Golang #bench",
		"post 2 #redis #bench",
		"post 3 #golang #golang",
		"post 4 no tags",
	} {
		require.NoError(t, svc.RecordHashtags(ctx, ExtractHashtags(content)))
	}

	top, err := svc.TopHashtags(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "bench", top[0].Tag)
	assert.Equal(t, int64(2), top[0].PostCount)
	assert.Equal(t, "golang", top[1].Tag)
	assert.Equal(t, int64(2), top[1].PostCount)
	assert.Equal(t, "redis", top[2].Tag)
}

var _ cache.Cache = brokenCache{}
