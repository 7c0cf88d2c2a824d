package models

import (
	"time"
)

// Like is one row of the user↔post M:N "likes" relation.
// The composite unique index keeps at most one row per (user, post) pair.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_like_pair,unique" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    uint      `gorm:"not null;index:idx_like_pair,unique;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
