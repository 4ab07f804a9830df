package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/feedgraph/internal/model"
	"github.com/d60-Lab/feedgraph/internal/repository"
	"github.com/d60-Lab/feedgraph/pkg/logger"
)

// RelationshipService 关系链写操作。每次改动关注图都在同一请求内同步失效社交图缓存，
// 失效失败时返回 ErrInvalidation。
type RelationshipService interface {
	// Follow 关注；目标为私密账号时返回 PENDING
	Follow(ctx context.Context, fromUserID, toUserID string) (model.FollowStatus, error)
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	// AcceptFollow userID 同意 followerID 的关注请求
	AcceptFollow(ctx context.Context, userID, followerID string) error
	RejectFollow(ctx context.Context, userID, followerID string) error
	ListPendingRequests(ctx context.Context, userID string) ([]string, error)
	// Block 拉黑并解除双方关注
	Block(ctx context.Context, fromUserID, toUserID string) error
	Unblock(ctx context.Context, fromUserID, toUserID string) error
	Mute(ctx context.Context, fromUserID, toUserID string) error
	Unmute(ctx context.Context, fromUserID, toUserID string) error
}

type relationshipService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	blocks  repository.BlockRepository
	mutes   repository.MuteRepository
	graph   SocialGraphCache
}

func NewRelationshipService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	blocks repository.BlockRepository,
	mutes repository.MuteRepository,
	graph SocialGraphCache,
) RelationshipService {
	return &relationshipService{users: users, follows: follows, blocks: blocks, mutes: mutes, graph: graph}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) (model.FollowStatus, error) {
	if fromUserID == toUserID {
		return "", ErrFollowSelf
	}
	blocked, err := s.blocks.ExistsBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return "", err
	}
	if blocked {
		return "", ErrBlocked
	}

	status := model.FollowAccepted
	target, err := s.users.GetByID(ctx, toUserID)
	switch {
	case err == nil:
		if target.IsPrivate {
			status = model.FollowPending
		}
	case errors.Is(err, repository.ErrNotFound):
		// 用户资料由外部维护，缺失时按公开账号处理
	default:
		return "", err
	}

	if err := s.follows.Create(ctx, fromUserID, toUserID, status); err != nil {
		return "", err
	}
	// 重复关注时以已有记录的状态为准
	existing, err := s.follows.Get(ctx, fromUserID, toUserID)
	if err != nil {
		return "", err
	}
	if err := s.graph.Invalidate(ctx, fromUserID); err != nil {
		return "", err
	}
	return existing.Status, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.follows.Delete(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	return s.graph.Invalidate(ctx, fromUserID)
}

func (s *relationshipService) AcceptFollow(ctx context.Context, userID, followerID string) error {
	ok, err := s.follows.Accept(ctx, followerID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingRequest
	}
	return s.graph.Invalidate(ctx, followerID)
}

func (s *relationshipService) RejectFollow(ctx context.Context, userID, followerID string) error {
	ok, err := s.follows.DeletePending(ctx, followerID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingRequest
	}
	return nil
}

func (s *relationshipService) ListPendingRequests(ctx context.Context, userID string) ([]string, error) {
	return s.follows.ListPendingFollowerIDs(ctx, userID)
}

func (s *relationshipService) Block(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrBlockSelf
	}
	if err := s.blocks.Create(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	if err := s.follows.DeleteBetween(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	logger.Info("user blocked", zap.String("blocker_id", fromUserID), zap.String("blocked_id", toUserID))
	return s.graph.Invalidate(ctx, fromUserID, toUserID)
}

func (s *relationshipService) Unblock(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.blocks.Delete(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	return s.graph.Invalidate(ctx, fromUserID, toUserID)
}

// 静音只影响屏蔽集合，屏蔽集合每次实时计算，无需失效缓存
func (s *relationshipService) Mute(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrMuteSelf
	}
	return s.mutes.Create(ctx, fromUserID, toUserID)
}

func (s *relationshipService) Unmute(ctx context.Context, fromUserID, toUserID string) error {
	return s.mutes.Delete(ctx, fromUserID, toUserID)
}
