package repository

import (
	"context"
	"errors"
	"ripple/internal/models"

	"gorm.io/gorm"
)

type FollowRepository interface {
	// Toggle flips the follower→following edge and returns the new state.
	Toggle(ctx context.Context, followerID, followingID uint) (following bool, err error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	// Counts returns how many users follow userID and how many userID follows.
	Counts(ctx context.Context, userID uint) (followers int64, following int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Toggle(ctx context.Context, followerID, followingID uint) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.Follow
		err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&edge).Error
		switch {
		case err == nil:
			following = false
			return tx.Delete(&edge).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			following = true
			return tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error
		default:
			return err
		}
	})
	return following, err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
