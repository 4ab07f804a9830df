package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// InteractionRepository 点赞/转发/收藏标记。
// 批量查询按 post id 列表一次取回，供 feed 装饰使用。
type InteractionRepository interface {
	LikedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error)
	RepostedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error)
	BookmarkedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error)

	Like(ctx context.Context, userID string, postID int64) error
	Unlike(ctx context.Context, userID string, postID int64) error
	Repost(ctx context.Context, userID string, postID int64) error
	Unrepost(ctx context.Context, userID string, postID int64) error
	Bookmark(ctx context.Context, userID string, postID int64) error
	Unbookmark(ctx context.Context, userID string, postID int64) error
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) markedPostIDs(ctx context.Context, table interface{}, userID string, postIDs []int64) ([]int64, error) {
	ids := []int64{}
	if len(postIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(table).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *interactionRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	return r.markedPostIDs(ctx, &model.Like{}, userID, postIDs)
}

func (r *interactionRepository) RepostedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	return r.markedPostIDs(ctx, &model.Repost{}, userID, postIDs)
}

func (r *interactionRepository) BookmarkedPostIDs(ctx context.Context, userID string, postIDs []int64) ([]int64, error) {
	return r.markedPostIDs(ctx, &model.Bookmark{}, userID, postIDs)
}

// mark 插入标记，首次插入时同步调整帖子计数列（counter 为空则不计数）
func (r *interactionRepository) mark(ctx context.Context, row interface{}, postID int64, counter string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || counter == "" {
			return nil
		}
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			UpdateColumn(counter, gorm.Expr(counter+" + ?", 1)).Error
	})
}

func (r *interactionRepository) unmark(ctx context.Context, table interface{}, userID string, postID int64, counter string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(table)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || counter == "" {
			return nil
		}
		return tx.Model(&model.Post{}).Where("id = ? AND "+counter+" > 0", postID).
			UpdateColumn(counter, gorm.Expr(counter+" - ?", 1)).Error
	})
}

func (r *interactionRepository) Like(ctx context.Context, userID string, postID int64) error {
	return r.mark(ctx, &model.Like{ID: uuid.New().String(), UserID: userID, PostID: postID}, postID, "like_count")
}

func (r *interactionRepository) Unlike(ctx context.Context, userID string, postID int64) error {
	return r.unmark(ctx, &model.Like{}, userID, postID, "like_count")
}

func (r *interactionRepository) Repost(ctx context.Context, userID string, postID int64) error {
	return r.mark(ctx, &model.Repost{ID: uuid.New().String(), UserID: userID, PostID: postID}, postID, "repost_count")
}

func (r *interactionRepository) Unrepost(ctx context.Context, userID string, postID int64) error {
	return r.unmark(ctx, &model.Repost{}, userID, postID, "repost_count")
}

// 收藏不计入帖子公开计数
func (r *interactionRepository) Bookmark(ctx context.Context, userID string, postID int64) error {
	return r.mark(ctx, &model.Bookmark{ID: uuid.New().String(), UserID: userID, PostID: postID}, postID, "")
}

func (r *interactionRepository) Unbookmark(ctx context.Context, userID string, postID int64) error {
	return r.unmark(ctx, &model.Bookmark{}, userID, postID, "")
}
