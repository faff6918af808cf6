package repository

import (
	"context"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RepostRepository interface {
	Exists(ctx context.Context, userID, postID string) (bool, error)
	Create(ctx context.Context, data *entity.Repost) error
	Delete(ctx context.Context, userID, postID string) error
	DeleteByPostID(ctx context.Context, postID string) error
	GetLatest(ctx context.Context, scope AuthorScope, limit int) ([]entity.Repost, error)
	GetRepostedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error)
}

type repostRepository struct{}

func NewRepostRepository() *repostRepository {
	return &repostRepository{}
}

func (r *repostRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.Repost{}).
		Where("user_id=? AND post_id=?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *repostRepository) Create(ctx context.Context, data *entity.Repost) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *repostRepository) Delete(ctx context.Context, userID, postID string) error {
	tx := xcontext.DB(ctx).Where("user_id=? AND post_id=?", userID, postID).Delete(&entity.Repost{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *repostRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Where("post_id=?", postID).Delete(&entity.Repost{}).Error
}

// GetLatest returns the newest reposts made by users in scope.
func (r *repostRepository) GetLatest(ctx context.Context, scope AuthorScope, limit int) ([]entity.Repost, error) {
	if scope.empty() {
		return nil, nil
	}

	var result []entity.Repost
	tx := scope.apply(xcontext.DB(ctx), "user_id").
		Order("created_at DESC").
		Order("post_id DESC").
		Limit(limit)
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *repostRepository) GetRepostedPostIDs(
	ctx context.Context, userID string, postIDs []string,
) ([]string, error) {
	if userID == "" || len(postIDs) == 0 {
		return nil, nil
	}

	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Repost{}).
		Where("user_id=? AND post_id IN (?)", userID, postIDs).
		Pluck("post_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
