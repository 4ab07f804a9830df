package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/pkg/database"
)

var ctx = context.Background()

type RepositorySuite struct {
	suite.Suite

	db           *gorm.DB
	follows      FollowRepository
	blocks       BlockRepository
	mutes        MuteRepository
	posts        PostRepository
	interactions InteractionRepository
	hashtags     HashtagRepository
	users        UserRepository
}

func TestRepositories(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	db, err := database.OpenSQLiteMemory()
	s.Require().NoError(err)
	s.db = db
	s.follows = NewFollowRepository(db)
	s.blocks = NewBlockRepository(db)
	s.mutes = NewMuteRepository(db)
	s.posts = NewPostRepository(db)
	s.interactions = NewInteractionRepository(db)
	s.hashtags = NewHashtagRepository(db)
	s.users = NewUserRepository(db)
}

func (s *RepositorySuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	_ = sqlDB.Close()
}

func (s *RepositorySuite) newPost(author string, vis model.Visibility) *model.Post {
	p := &model.Post{AuthorID: author, Visibility: vis, Content: "hello from " + author}
	s.Require().NoError(s.posts.Create(ctx, p))
	return p
}

func (s *RepositorySuite) TestFollowLifecycle() {
	s.Require().NoError(s.follows.Create(ctx, "v", "a", model.FollowAccepted))
	s.Require().NoError(s.follows.Create(ctx, "v", "a", model.FollowAccepted)) // 幂等
	s.Require().NoError(s.follows.Create(ctx, "v", "p", model.FollowPending))

	ids, err := s.follows.ListFollowingIDs(ctx, "v")
	s.Require().NoError(err)
	s.Equal([]string{"a"}, ids)

	pending, err := s.follows.ListPendingFollowerIDs(ctx, "p")
	s.Require().NoError(err)
	s.Equal([]string{"v"}, pending)

	ok, err := s.follows.Accept(ctx, "v", "p")
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.follows.Accept(ctx, "v", "p")
	s.Require().NoError(err)
	s.False(ok, "already accepted")

	ids, err = s.follows.ListFollowingIDs(ctx, "v")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "p"}, ids)

	s.Require().NoError(s.follows.Delete(ctx, "v", "a"))
	_, err = s.follows.Get(ctx, "v", "a")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestFollowDeleteBetween() {
	s.Require().NoError(s.follows.Create(ctx, "a", "b", model.FollowAccepted))
	s.Require().NoError(s.follows.Create(ctx, "b", "a", model.FollowAccepted))
	s.Require().NoError(s.follows.Create(ctx, "a", "c", model.FollowAccepted))

	s.Require().NoError(s.follows.DeleteBetween(ctx, "b", "a"))

	ok, err := s.follows.IsAcceptedFollower(ctx, "a", "b")
	s.Require().NoError(err)
	s.False(ok)
	ok, err = s.follows.IsAcceptedFollower(ctx, "b", "a")
	s.Require().NoError(err)
	s.False(ok)
	ok, err = s.follows.IsAcceptedFollower(ctx, "a", "c")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepositorySuite) TestRejectOnlyDeletesPending() {
	s.Require().NoError(s.follows.Create(ctx, "v", "a", model.FollowAccepted))
	ok, err := s.follows.DeletePending(ctx, "v", "a")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.follows.Create(ctx, "w", "a", model.FollowPending))
	ok, err = s.follows.DeletePending(ctx, "w", "a")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepositorySuite) TestBlocksInvolvingBothDirections() {
	s.Require().NoError(s.blocks.Create(ctx, "v", "a"))
	s.Require().NoError(s.blocks.Create(ctx, "b", "v"))
	s.Require().NoError(s.blocks.Create(ctx, "x", "y"))
	s.Require().NoError(s.blocks.Create(ctx, "v", "a"))

	rows, err := s.blocks.ListInvolving(ctx, "v")
	s.Require().NoError(err)
	s.Len(rows, 2)

	between, err := s.blocks.ExistsBetween(ctx, "a", "v")
	s.Require().NoError(err)
	s.True(between)

	s.Require().NoError(s.blocks.Delete(ctx, "v", "a"))
	between, err = s.blocks.ExistsBetween(ctx, "v", "a")
	s.Require().NoError(err)
	s.False(between)
}

func (s *RepositorySuite) TestMutes() {
	s.Require().NoError(s.mutes.Create(ctx, "v", "m"))
	s.Require().NoError(s.mutes.Create(ctx, "m", "z"))

	ids, err := s.mutes.ListMutedIDs(ctx, "v")
	s.Require().NoError(err)
	s.Equal([]string{"m"}, ids)

	s.Require().NoError(s.mutes.Delete(ctx, "v", "m"))
	ids, err = s.mutes.ListMutedIDs(ctx, "v")
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *RepositorySuite) TestListTopLevelFilters() {
	p1 := s.newPost("a", model.VisibilityPublic)
	p2 := s.newPost("a", model.VisibilityFollowers)
	p3 := s.newPost("b", model.VisibilityPublic)
	reply := &model.Post{AuthorID: "b", ParentID: &p1.ID, Visibility: model.VisibilityPublic}
	s.Require().NoError(s.posts.Create(ctx, reply))
	s.newPost("c", model.VisibilityPublic)

	ids := func(posts []*model.Post) []int64 {
		out := make([]int64, len(posts))
		for i, p := range posts {
			out[i] = p.ID
		}
		return out
	}

	got, err := s.posts.ListTopLevel(ctx, PostQuery{AuthorIDs: []string{"a", "b"}})
	s.Require().NoError(err)
	s.Equal([]int64{p3.ID, p2.ID, p1.ID}, ids(got), "replies excluded, id desc")

	got, err = s.posts.ListTopLevel(ctx, PostQuery{AuthorIDs: []string{"a", "b"}, PublicOnly: true})
	s.Require().NoError(err)
	s.Equal([]int64{p3.ID, p1.ID}, ids(got))

	got, err = s.posts.ListTopLevel(ctx, PostQuery{AuthorIDs: []string{"a", "b"}, BeforeID: p3.ID, Limit: 1})
	s.Require().NoError(err)
	s.Equal([]int64{p2.ID}, ids(got))

	got, err = s.posts.ListTopLevel(ctx, PostQuery{AuthorIDs: []string{}})
	s.Require().NoError(err)
	s.Empty(got)

	got, err = s.posts.ListTopLevel(ctx, PostQuery{ExcludeAuthorIDs: []string{"a", "c"}})
	s.Require().NoError(err)
	s.Equal([]int64{p3.ID}, ids(got))

	got, err = s.posts.ListTopLevel(ctx, PostQuery{ExcludeAuthorIDs: []string{}, PublicOnly: true})
	s.Require().NoError(err)
	s.Len(got, 3, "empty exclusion list must not filter everything")
}

func (s *RepositorySuite) TestListTopLevelCreatedAfter() {
	old := s.newPost("a", model.VisibilityPublic)
	s.Require().NoError(s.db.Model(&model.Post{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", time.Now().UTC().Add(-48*time.Hour)).Error)
	fresh := s.newPost("a", model.VisibilityPublic)

	got, err := s.posts.ListTopLevel(ctx, PostQuery{CreatedAfter: time.Now().Add(-24 * time.Hour)})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(fresh.ID, got[0].ID)
}

func (s *RepositorySuite) TestGetByIDAndIncrementViews() {
	p := s.newPost("a", model.VisibilityPublic)
	s.Require().NoError(s.posts.IncrementViews(ctx, p.ID))
	s.Require().NoError(s.posts.IncrementViews(ctx, p.ID))

	got, err := s.posts.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), got.ViewCount)

	_, err = s.posts.GetByID(ctx, p.ID+100)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestInteractionMarks() {
	p1 := s.newPost("a", model.VisibilityPublic)
	p2 := s.newPost("a", model.VisibilityPublic)
	p3 := s.newPost("a", model.VisibilityPublic)

	s.Require().NoError(s.interactions.Like(ctx, "v", p1.ID))
	s.Require().NoError(s.interactions.Like(ctx, "v", p1.ID))
	s.Require().NoError(s.interactions.Like(ctx, "w", p2.ID))
	s.Require().NoError(s.interactions.Repost(ctx, "v", p2.ID))
	s.Require().NoError(s.interactions.Bookmark(ctx, "v", p3.ID))

	all := []int64{p1.ID, p2.ID, p3.ID}
	liked, err := s.interactions.LikedPostIDs(ctx, "v", all)
	s.Require().NoError(err)
	s.Equal([]int64{p1.ID}, liked)

	reposted, err := s.interactions.RepostedPostIDs(ctx, "v", all)
	s.Require().NoError(err)
	s.Equal([]int64{p2.ID}, reposted)

	bookmarked, err := s.interactions.BookmarkedPostIDs(ctx, "v", all)
	s.Require().NoError(err)
	s.Equal([]int64{p3.ID}, bookmarked)

	none, err := s.interactions.LikedPostIDs(ctx, "v", nil)
	s.Require().NoError(err)
	s.Empty(none)

	got, err := s.posts.GetByID(ctx, p1.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), got.LikeCount, "duplicate like does not double count")

	s.Require().NoError(s.interactions.Unlike(ctx, "v", p1.ID))
	s.Require().NoError(s.interactions.Unlike(ctx, "v", p1.ID))
	got, err = s.posts.GetByID(ctx, p1.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), got.LikeCount)

	s.Require().NoError(s.interactions.Unrepost(ctx, "v", p2.ID))
	s.Require().NoError(s.interactions.Unbookmark(ctx, "v", p3.ID))
	reposted, err = s.interactions.RepostedPostIDs(ctx, "v", all)
	s.Require().NoError(err)
	s.Empty(reposted)
}

func (s *RepositorySuite) TestHashtagTop() {
	s.Require().NoError(s.hashtags.Increment(ctx, []string{"go", "redis"}))
	s.Require().NoError(s.hashtags.Increment(ctx, []string{"go", "gorm"}))
	s.Require().NoError(s.hashtags.Increment(ctx, []string{"go"}))

	top, err := s.hashtags.Top(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("go", top[0].Tag)
	s.Equal(int64(3), top[0].PostCount)
	s.Equal("gorm", top[1].Tag, "ties broken by tag")
}

func (s *RepositorySuite) TestUsers() {
	s.Require().NoError(s.users.Create(ctx, &model.User{ID: "u1", Username: "alice", IsPrivate: true}))
	u, err := s.users.GetByID(ctx, "u1")
	s.Require().NoError(err)
	s.True(u.IsPrivate)

	_, err = s.users.GetByID(ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

// 一个用户关注 N 人时全量拉取关注列表的开销，对应社交图缓存未命中的路径
func BenchmarkListFollowingIDs(b *testing.B) {
	db, err := database.OpenSQLiteMemory()
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	repo := NewFollowRepository(db)

	const N = 2000
	for i := 1; i <= N; i++ {
		if err := repo.Create(ctx, "u0", fmt.Sprintf("u%d", i), model.FollowAccepted); err != nil {
			b.Fatalf("seed follows: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.ListFollowingIDs(ctx, "u0"); err != nil {
			b.Fatal(err)
		}
	}
}
