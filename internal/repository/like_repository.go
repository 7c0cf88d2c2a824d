package repository

import (
	"context"
	"errors"
	"ripple/internal/models"

	"gorm.io/gorm"
)

type LikeRepository interface {
	// Toggle flips the viewer's like on a post and returns the new liked
	// state plus the post's updated like count.
	Toggle(ctx context.Context, userID, postID uint) (liked bool, likes int64, err error)
	Count(ctx context.Context, postID uint) (int64, error)
	Liked(ctx context.Context, userID, postID uint) (bool, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	FillCounts(ctx context.Context, posts []models.Post) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

// Toggle runs the read-modify-write inside a transaction so concurrent
// toggles by the same user cannot produce duplicate rows or lost deletes.
func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (bool, int64, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			liked = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{UserID: userID, PostID: postID}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, 0, err
	}

	likes, err := r.Count(ctx, postID)
	return liked, likes, err
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) Liked(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// LikedPostIDs returns the subset of postIDs the user has liked.
func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	likedSet := make(map[uint]bool)
	if userID == 0 || len(postIDs) == 0 {
		return likedSet, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		likedSet[id] = true
	}
	return likedSet, nil
}

// FillCounts 批量填充帖子的点赞数量
func (r *likeRepository) FillCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int64
	}
	var results []countResult
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return err
	}

	countMap := make(map[uint]int64, len(results))
	for _, res := range results {
		countMap[res.PostID] = res.Count
	}
	for i := range posts {
		posts[i].LikeCount = countMap[posts[i].ID]
	}
	return nil
}
