package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type FollowRepository interface {
	// Create 幂等插入关注边；已存在时保留原状态
	Create(ctx context.Context, followerID, followingID string, status model.FollowStatus) error
	Delete(ctx context.Context, followerID, followingID string) error
	// DeleteBetween 删除两人之间两个方向的关注边
	DeleteBetween(ctx context.Context, a, b string) error
	Get(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	// Accept 把 PENDING 边改为 ACCEPTED，返回是否有边被更新
	Accept(ctx context.Context, followerID, followingID string) (bool, error)
	// DeletePending 只删除 PENDING 状态的边
	DeletePending(ctx context.Context, followerID, followingID string) (bool, error)
	IsAcceptedFollower(ctx context.Context, followerID, followingID string) (bool, error)
	// ListFollowingIDs 返回 follower 的全部 ACCEPTED 关注对象
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	ListPendingFollowerIDs(ctx context.Context, followingID string) ([]string, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followingID string, status model.FollowStatus) error {
	f := &model.Follow{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      status,
	}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) DeleteBetween(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)", a, b, b, a).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Get(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	var f model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *followRepository) Accept(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?", followerID, followingID, model.FollowPending).
		Update("status", model.FollowAccepted)
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) DeletePending(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND status = ?", followerID, followingID, model.FollowPending).
		Delete(&model.Follow{})
	return res.RowsAffected > 0, res.Error
}

func (r *followRepository) IsAcceptedFollower(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?", followerID, followingID, model.FollowAccepted).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", followerID, model.FollowAccepted).
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListPendingFollowerIDs(ctx context.Context, followingID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("following_id = ? AND status = ?", followingID, model.FollowPending).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}
