package model

import "time"

// Hashtag 话题聚合计数
type Hashtag struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Tag       string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"tag"`
	PostCount int64     `gorm:"not null;default:0;index" json:"postCount"`
	UpdatedAt time.Time `json:"-"`
}

func (Hashtag) TableName() string { return "hashtags" }
