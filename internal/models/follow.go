package models

import (
	"time"
)

// Follow is a directed edge: follower → following.
// idx_follow_pair = (follower_id, following_id), 复合唯一键，避免重复关注
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;index:idx_follow_pair,unique" json:"follower_id"`
	Follower    User      `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	FollowingID uint      `gorm:"not null;index:idx_follow_pair,unique;index" json:"following_id"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
