package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/feedgraph/internal/model"
)

// PostQuery 描述一次顶层帖子列表查询，结果固定按 id 倒序
type PostQuery struct {
	// AuthorIDs 为 nil 表示不限作者；非 nil 但为空表示没有候选作者
	AuthorIDs []string
	// ExcludeAuthorIDs 仅在 AuthorIDs 为 nil 时使用
	ExcludeAuthorIDs []string
	PublicOnly       bool
	CreatedAfter     time.Time
	// BeforeID > 0 时只取 id < BeforeID 的帖子
	BeforeID int64
	Limit    int
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	ListTopLevel(ctx context.Context, q PostQuery) ([]*model.Post, error)
	IncrementViews(ctx context.Context, id int64) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.Visibility == "" {
		post.Visibility = model.VisibilityPublic
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListTopLevel(ctx context.Context, q PostQuery) ([]*model.Post, error) {
	posts := []*model.Post{}
	if q.AuthorIDs != nil && len(q.AuthorIDs) == 0 {
		return posts, nil
	}

	tx := r.db.WithContext(ctx).Model(&model.Post{}).Where("parent_id IS NULL")
	if q.AuthorIDs != nil {
		tx = tx.Where("author_id IN ?", q.AuthorIDs)
	} else if len(q.ExcludeAuthorIDs) > 0 {
		// 空切片会被渲染成 NOT IN (NULL)，把所有行都过滤掉
		tx = tx.Where("author_id NOT IN ?", q.ExcludeAuthorIDs)
	}
	if q.PublicOnly {
		tx = tx.Where("visibility = ?", model.VisibilityPublic)
	}
	if !q.CreatedAfter.IsZero() {
		tx = tx.Where("created_at > ?", q.CreatedAfter.UTC())
	}
	if q.BeforeID > 0 {
		tx = tx.Where("id < ?", q.BeforeID)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Order("id DESC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}
