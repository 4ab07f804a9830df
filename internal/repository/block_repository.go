package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type BlockRepository interface {
	Create(ctx context.Context, blockerID, blockedID string) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	// ListInvolving 一次查询取出 user 作为拉黑方或被拉黑方的全部记录
	ListInvolving(ctx context.Context, userID string) ([]*model.Block, error)
	// ExistsBetween 任一方向存在拉黑即为 true
	ExistsBetween(ctx context.Context, a, b string) (bool, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository { return &blockRepository{db: db} }

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	b := &model.Block{ID: uuid.New().String(), BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{}).Error
}

func (r *blockRepository) ListInvolving(ctx context.Context, userID string) ([]*model.Block, error) {
	var res []*model.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&res).Error
	return res, err
}

func (r *blockRepository) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

type MuteRepository interface {
	Create(ctx context.Context, muterID, mutedID string) error
	Delete(ctx context.Context, muterID, mutedID string) error
	ListMutedIDs(ctx context.Context, muterID string) ([]string, error)
}

type muteRepository struct {
	db *gorm.DB
}

func NewMuteRepository(db *gorm.DB) MuteRepository { return &muteRepository{db: db} }

func (r *muteRepository) Create(ctx context.Context, muterID, mutedID string) error {
	m := &model.Mute{ID: uuid.New().String(), MuterID: muterID, MutedID: mutedID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

func (r *muteRepository) Delete(ctx context.Context, muterID, mutedID string) error {
	return r.db.WithContext(ctx).
		Where("muter_id = ? AND muted_id = ?", muterID, mutedID).
		Delete(&model.Mute{}).Error
}

func (r *muteRepository) ListMutedIDs(ctx context.Context, muterID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.Mute{}).
		Where("muter_id = ?", muterID).
		Pluck("muted_id", &ids).Error
	return ids, err
}
