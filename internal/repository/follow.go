package repository

import (
	"context"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Get(ctx context.Context, followerID, followeeID string) (*entity.Follow, error)
	Create(ctx context.Context, data *entity.Follow) error
	Delete(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFolloweeIDs(ctx context.Context, userID string) ([]string, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowees(ctx context.Context, userID string) (int64, error)
}

type followRepository struct{}

func NewFollowRepository() *followRepository {
	return &followRepository{}
}

func (r *followRepository) Get(ctx context.Context, followerID, followeeID string) (*entity.Follow, error) {
	var result entity.Follow
	err := xcontext.DB(ctx).
		Where("follower_id=? AND followee_id=?", followerID, followeeID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *followRepository) Create(ctx context.Context, data *entity.Follow) error {
	return xcontext.DB(ctx).Create(data).Error
}

// Delete returns gorm.ErrRecordNotFound if the edge does not exist.
func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	tx := xcontext.DB(ctx).
		Where("follower_id=? AND followee_id=?", followerID, followeeID).
		Delete(&entity.Follow{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("follower_id=? AND followee_id=?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *followRepository) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("followee_id=?", userID).
		Order("created_at DESC").
		Pluck("follower_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *followRepository) GetFolloweeIDs(ctx context.Context, userID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Follow{}).
		Where("follower_id=?", userID).
		Order("created_at DESC").
		Pluck("followee_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Follow{}).Where("followee_id=?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowees(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Follow{}).Where("follower_id=?", userID).Count(&count).Error
	return count, err
}
