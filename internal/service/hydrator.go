package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/metrics"
)

// InteractionHydrator 给一批帖子打上当前查看者的点赞/转发/收藏标记
type InteractionHydrator interface {
	Hydrate(ctx context.Context, viewerID string, posts []*model.Post) ([]*FeedPost, error)
}

type interactionHydrator struct {
	interactions repository.InteractionRepository
}

func NewInteractionHydrator(interactions repository.InteractionRepository) InteractionHydrator {
	return &interactionHydrator{interactions: interactions}
}

// Hydrate 固定发出三次批量查询，与批大小无关。任一查询失败整页失败，不返回半成品。
func (h *interactionHydrator) Hydrate(ctx context.Context, viewerID string, posts []*model.Post) ([]*FeedPost, error) {
	out := make([]*FeedPost, len(posts))
	for i, p := range posts {
		out[i] = &FeedPost{Post: p}
	}
	if viewerID == "" || len(posts) == 0 {
		return out, nil
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	metrics.ObserveHydration(len(ids))

	var liked, reposted, bookmarked []int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		liked, err = h.interactions.LikedPostIDs(gctx, viewerID, ids)
		return err
	})
	g.Go(func() (err error) {
		reposted, err = h.interactions.RepostedPostIDs(gctx, viewerID, ids)
		return err
	})
	g.Go(func() (err error) {
		bookmarked, err = h.interactions.BookmarkedPostIDs(gctx, viewerID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	likedSet, repostedSet, bookmarkedSet := postIDSet(liked), postIDSet(reposted), postIDSet(bookmarked)
	for _, fp := range out {
		_, fp.IsLiked = likedSet[fp.ID]
		_, fp.IsReposted = repostedSet[fp.ID]
		_, fp.IsBookmarked = bookmarkedSet[fp.ID]
	}
	return out, nil
}

func postIDSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
