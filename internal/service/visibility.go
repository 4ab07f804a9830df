package service

import (
	"context"

	"github.com/d60-Lab/feedgraph/internal/repository"
)

// VisibilityFilter 计算某个查看者必须屏蔽的作者集合。
// 每次请求实时查询，不走缓存：拉黑/静音必须立即生效。
type VisibilityFilter interface {
	Exclusions(ctx context.Context, viewerID string) (IDSet, error)
}

type visibilityFilter struct {
	blocks repository.BlockRepository
	mutes  repository.MuteRepository
}

func NewVisibilityFilter(blocks repository.BlockRepository, mutes repository.MuteRepository) VisibilityFilter {
	return &visibilityFilter{blocks: blocks, mutes: mutes}
}

func (f *visibilityFilter) Exclusions(ctx context.Context, viewerID string) (IDSet, error) {
	out := IDSet{}
	if viewerID == "" {
		return out, nil
	}

	blocks, err := f.blocks.ListInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		if b.BlockerID == viewerID {
			out.Add(b.BlockedID)
		} else {
			out.Add(b.BlockerID)
		}
	}

	muted, err := f.mutes.ListMutedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	for _, id := range muted {
		out.Add(id)
	}
	return out, nil
}
