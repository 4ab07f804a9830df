package model

import "time"

// Block 拉黑（单向存储，双向生效）
type Block struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	BlockerID string `gorm:"type:varchar(36);not null;index:idx_block_pair,unique"`
	BlockedID string `gorm:"type:varchar(36);not null;index:idx_block_pair,unique;index:idx_block_blocked"`
	CreatedAt time.Time
}

func (Block) TableName() string { return "blocks" }

// Mute 静音（单向生效，只影响 muter 的 feed）
type Mute struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	MuterID   string `gorm:"type:varchar(36);not null;index:idx_mute_pair,unique"`
	MutedID   string `gorm:"type:varchar(36);not null;index:idx_mute_pair,unique"`
	CreatedAt time.Time
}

func (Mute) TableName() string { return "mutes" }
