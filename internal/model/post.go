package model

import "time"

// Visibility 帖子可见范围
type Visibility string

const (
	VisibilityPublic    Visibility = "PUBLIC"
	VisibilityFollowers Visibility = "FOLLOWERS"
	VisibilityMentioned Visibility = "MENTIONED"
	VisibilityPrivate   Visibility = "PRIVATE"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityMentioned, VisibilityPrivate:
		return true
	}
	return false
}

// Post 帖子。ID 自增，按创建顺序单调递增，可直接作为游标。
// ParentID 非空表示回复，不进入顶层 feed。
type Post struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID     string     `gorm:"type:varchar(36);index:idx_post_author_id,priority:1;not null" json:"authorId"`
	ParentID     *int64     `gorm:"index" json:"parentId,omitempty"`
	Visibility   Visibility `gorm:"type:varchar(16);not null;default:PUBLIC;index" json:"visibility"`
	Content      string     `gorm:"type:text" json:"content"`
	LikeCount    int64      `gorm:"not null;default:0" json:"likes"`
	CommentCount int64      `gorm:"not null;default:0" json:"comments"`
	RepostCount  int64      `gorm:"not null;default:0" json:"reposts"`
	ViewCount    int64      `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"-"`
}

func (Post) TableName() string { return "posts" }
