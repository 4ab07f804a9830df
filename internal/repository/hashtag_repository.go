package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

type HashtagRepository interface {
	// Top 按 post_count 倒序取前 n 个话题，计数相同时按 tag 升序
	Top(ctx context.Context, n int) ([]*model.Hashtag, error)
	// Increment 每个 tag 计数 +1，不存在则创建
	Increment(ctx context.Context, tags []string) error
}

type hashtagRepository struct {
	db *gorm.DB
}

func NewHashtagRepository(db *gorm.DB) HashtagRepository { return &hashtagRepository{db: db} }

func (r *hashtagRepository) Top(ctx context.Context, n int) ([]*model.Hashtag, error) {
	res := []*model.Hashtag{}
	err := r.db.WithContext(ctx).
		Order("post_count DESC").
		Order("tag ASC").
		Limit(n).
		Find(&res).Error
	return res, err
}

func (r *hashtagRepository) Increment(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			h := &model.Hashtag{Tag: tag, PostCount: 1}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "tag"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"post_count": gorm.Expr("hashtags.post_count + ?", 1),
					"updated_at": time.Now().UTC(),
				}),
			}).Create(h).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
