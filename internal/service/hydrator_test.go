package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type mockInteractionRepo struct {
	mock.Mock
}

func (m *mockInteractionRepo) LikedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockInteractionRepo) RepostedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockInteractionRepo) BookmarkedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockInteractionRepo) Like(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockInteractionRepo) Unlike(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockInteractionRepo) Repost(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockInteractionRepo) Unrepost(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockInteractionRepo) Bookmark(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockInteractionRepo) Unbookmark(ctx context.Context, userID string, postID int64) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func batch(n int) []*model.Post {
	posts := make([]*model.Post, n)
	for i := range posts {
		posts[i] = &model.Post{ID: int64(100 - i), AuthorID: "a"}
	}
	return posts
}

func TestHydrator_ThreeQueriesRegardlessOfBatchSize(t *testing.T) {
	for _, n := range []int{1, 50} {
		repo := new(mockInteractionRepo)
		posts := batch(n)
		repo.On("LikedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64{100}, nil).Once()
		repo.On("RepostedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64{}, nil).Once()
		repo.On("BookmarkedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64{99}, nil).Once()

		out, err := NewInteractionHydrator(repo).Hydrate(ctx, "v", posts)
		require.NoError(t, err)
		require.Len(t, out, n)
		assert.True(t, out[0].IsLiked)
		assert.False(t, out[0].IsReposted)
		assert.False(t, out[0].IsBookmarked)
		if n > 1 {
			assert.True(t, out[1].IsBookmarked)
		}

		repo.AssertExpectations(t)
		assert.Len(t, repo.Calls, 3)
		ids := repo.Calls[0].Arguments.Get(2).([]int64)
		assert.Len(t, ids, n)
	}
}

func TestHydrator_AnonymousOrEmptyDoesNoIO(t *testing.T) {
	repo := new(mockInteractionRepo)
	h := NewInteractionHydrator(repo)

	out, err := h.Hydrate(ctx, "", batch(3))
	require.NoError(t, err)
	for _, p := range out {
		assert.False(t, p.IsLiked || p.IsReposted || p.IsBookmarked)
	}

	out, err = h.Hydrate(ctx, "v", nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	repo.AssertNotCalled(t, "LikedPostIDs", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, repo.Calls)
}

func TestHydrator_AnyFailureFailsWholePage(t *testing.T) {
	boom := errors.New("datastore timeout")
	repo := new(mockInteractionRepo)
	repo.On("LikedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64{100}, nil).Maybe()
	repo.On("RepostedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64(nil), boom).Maybe()
	repo.On("BookmarkedPostIDs", mock.Anything, "v", mock.Anything).Return([]int64{}, nil).Maybe()

	out, err := NewInteractionHydrator(repo).Hydrate(ctx, "v", batch(4))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, out)
}
