package model

import (
	"time"
)

// FollowStatus 关注状态：私密账号先进入 PENDING，审批后 ACCEPTED
type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
)

// Follow 关注关系（A 关注 B），只有 ACCEPTED 的边参与 feed 计算
type Follow struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)"`
	FollowerID  string       `gorm:"type:varchar(36);index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	FollowingID string       `gorm:"type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_following"`
	Status      FollowStatus `gorm:"type:varchar(16);not null;default:ACCEPTED"`
	// idx_follow_pair = (follower_id, following_id)
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
