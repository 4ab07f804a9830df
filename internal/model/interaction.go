package model

import "time"

// Like / Repost / Bookmark 是 (user, post) 的存在性标记，只用来装饰 feed

type Like struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:ux_like_user_post"`
	PostID    int64  `gorm:"not null;uniqueIndex:ux_like_user_post;index"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }

type Repost struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:ux_repost_user_post"`
	PostID    int64  `gorm:"not null;uniqueIndex:ux_repost_user_post;index"`
	CreatedAt time.Time
}

func (Repost) TableName() string { return "reposts" }

type Bookmark struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:ux_bookmark_user_post"`
	PostID    int64  `gorm:"not null;uniqueIndex:ux_bookmark_user_post;index"`
	CreatedAt time.Time
}

func (Bookmark) TableName() string { return "bookmarks" }
