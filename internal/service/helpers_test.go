package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/cache"
	"github.com/d60-Lab/feedgraph/pkg/database"
)

var ctx = context.Background()

var errBackendDown = errors.New("cache backend down")

// brokenCache fails every call the way an unreachable redis does.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}
func (brokenCache) Delete(context.Context, ...string) error { return errBackendDown }

// engine wires the full feed stack over an in-memory sqlite database.
type engine struct {
	db           *gorm.DB
	cache        cache.Cache
	posts        repository.PostRepository
	follows      repository.FollowRepository
	blocks       repository.BlockRepository
	mutes        repository.MuteRepository
	users        repository.UserRepository
	interactions repository.InteractionRepository
	graph        SocialGraphCache
	feed         FeedService
	rel          RelationshipService
}

func newEngine(t *testing.T, c cache.Cache) *engine {
	t.Helper()
	db, err := database.OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if c == nil {
		mc, err := cache.NewMemoryCache(1024)
		require.NoError(t, err)
		c = mc
	}

	e := &engine{
		db:           db,
		cache:        c,
		posts:        repository.NewPostRepository(db),
		follows:      repository.NewFollowRepository(db),
		blocks:       repository.NewBlockRepository(db),
		mutes:        repository.NewMuteRepository(db),
		users:        repository.NewUserRepository(db),
		interactions: repository.NewInteractionRepository(db),
	}
	e.graph = NewSocialGraphCache(c, e.follows, time.Hour, false)
	e.feed = NewFeedService(
		e.posts, e.follows, e.blocks, e.graph,
		NewVisibilityFilter(e.blocks, e.mutes),
		NewInteractionHydrator(e.interactions),
		FeedOptions{DefaultLimit: 20, MaxLimit: 100, ExploreWindow: 24 * time.Hour, ExploreOverfetch: 3},
	)
	e.rel = NewRelationshipService(e.users, e.follows, e.blocks, e.mutes, e.graph)
	return e
}

func (e *engine) post(t *testing.T, author string, vis model.Visibility) *model.Post {
	t.Helper()
	p := &model.Post{AuthorID: author, Visibility: vis, Content: "post by " + author}
	require.NoError(t, e.posts.Create(ctx, p))
	return p
}

func (e *engine) follow(t *testing.T, from, to string) {
	t.Helper()
	_, err := e.rel.Follow(ctx, from, to)
	require.NoError(t, err)
}

func postIDs(page *FeedPage) []int64 {
	ids := make([]int64, len(page.Data))
	for i, p := range page.Data {
		ids[i] = p.ID
	}
	return ids
}

func authorsOf(page *FeedPage) []string {
	out := make([]string, len(page.Data))
	for i, p := range page.Data {
		out[i] = p.AuthorID
	}
	return out
}
