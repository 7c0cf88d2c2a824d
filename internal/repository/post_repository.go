package repository

import (
	"context"
	"ripple/internal/models"

	"gorm.io/gorm"
)

// Feed types understood by ListFeed.
const (
	FeedAll       = "all"
	FeedFollowing = "following"
	FeedProfile   = "profile"
)

// FeedQuery selects one page of posts. ViewerID is only consulted for the
// following feed, AuthorID only for the profile feed.
type FeedQuery struct {
	Feed     string
	ViewerID uint
	AuthorID uint
	Page     int
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ByID(ctx context.Context, id uint) (*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListFeed(ctx context.Context, q FeedQuery) ([]models.Post, Page, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) ByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Delete removes a post together with its like rows.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// ListFeed returns one page of posts, newest first, with the author
// preloaded. Like counts are filled separately by the like repository.
func (r *postRepository) ListFeed(ctx context.Context, q FeedQuery) ([]models.Post, Page, error) {
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Post{})
		switch q.Feed {
		case FeedFollowing:
			followed := r.db.Model(&models.Follow{}).
				Select("following_id").
				Where("follower_id = ?", q.ViewerID)
			tx = tx.Where("user_id IN (?)", followed)
		case FeedProfile:
			tx = tx.Where("user_id = ?", q.AuthorID)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	page := pageFor(total, q.Page)

	var posts []models.Post
	err := filtered().
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(PerPage).
		Offset((page.Number - 1) * PerPage).
		Find(&posts).Error
	if err != nil {
		return nil, Page{}, err
	}
	return posts, page, nil
}
