package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	EditedAt  time.Time `gorm:"autoUpdateTime" json:"edited_at"`

	// 非数据库字段，查询时由 like repository 填充
	LikeCount int64 `gorm:"-" json:"like_count"`
}

// PostView is the viewer-relative JSON projection of a post.
type PostView struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	EditedAt  string `json:"edited_at"`
	Author    string `json:"author"`
	Likes     int64  `json:"likes"`
	Liked     bool   `json:"liked"`
	IsAuthor  bool   `json:"is_author"`
}

// NewPostView builds the projection from already-loaded state.
// The post must have User preloaded and LikeCount filled.
// viewerID is zero for anonymous viewers.
func NewPostView(p Post, liked bool, viewerID uint) PostView {
	return PostView{
		ID:        p.ID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		EditedAt:  p.EditedAt.Format(time.RFC3339),
		Author:    p.User.Username,
		Likes:     p.LikeCount,
		Liked:     liked,
		IsAuthor:  viewerID != 0 && p.UserID == viewerID,
	}
}
