package model

import "time"

// User 用户（仅保留可见性判断所需字段）
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Username  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	IsPrivate bool   `gorm:"not null;default:false"` // 私密账号的关注需审批
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
