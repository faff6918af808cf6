package repository

import (
	"context"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CritiqueLikeRepository interface {
	Exists(ctx context.Context, critiqueID, userID string) (bool, error)
	Create(ctx context.Context, data *entity.CritiqueLike) error
	Delete(ctx context.Context, critiqueID, userID string) error
	DeleteByCritiqueIDs(ctx context.Context, critiqueIDs []string) error
	GetLikedCritiqueIDs(ctx context.Context, userID string, critiqueIDs []string) ([]string, error)
}

type critiqueLikeRepository struct{}

func NewCritiqueLikeRepository() *critiqueLikeRepository {
	return &critiqueLikeRepository{}
}

func (r *critiqueLikeRepository) Exists(ctx context.Context, critiqueID, userID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.CritiqueLike{}).
		Where("critique_id=? AND user_id=?", critiqueID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *critiqueLikeRepository) Create(ctx context.Context, data *entity.CritiqueLike) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *critiqueLikeRepository) Delete(ctx context.Context, critiqueID, userID string) error {
	tx := xcontext.DB(ctx).
		Where("critique_id=? AND user_id=?", critiqueID, userID).
		Delete(&entity.CritiqueLike{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *critiqueLikeRepository) DeleteByCritiqueIDs(ctx context.Context, critiqueIDs []string) error {
	if len(critiqueIDs) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Where("critique_id IN (?)", critiqueIDs).Delete(&entity.CritiqueLike{}).Error
}

func (r *critiqueLikeRepository) GetLikedCritiqueIDs(
	ctx context.Context, userID string, critiqueIDs []string,
) ([]string, error) {
	if userID == "" || len(critiqueIDs) == 0 {
		return nil, nil
	}

	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.CritiqueLike{}).
		Where("user_id=? AND critique_id IN (?)", userID, critiqueIDs).
		Pluck("critique_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
