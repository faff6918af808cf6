package repository

import (
	"context"
	"errors"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CritiqueRepository interface {
	Create(ctx context.Context, data *entity.Critique) error
	GetByID(ctx context.Context, id string) (*entity.Critique, error)
	GetByPostID(ctx context.Context, postID string) ([]entity.Critique, error)
	GetEarliestByPostIDs(ctx context.Context, postIDs []string) (map[string]entity.Critique, error)
	CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error)
	GetIDsByPostID(ctx context.Context, postID string) ([]string, error)
	DeleteUnlessBest(ctx context.Context, id string) error
	DeleteByPostID(ctx context.Context, postID string) error
	IncreaseLikeCount(ctx context.Context, id string, delta int64) error
}

type critiqueRepository struct{}

func NewCritiqueRepository() *critiqueRepository {
	return &critiqueRepository{}
}

func (r *critiqueRepository) Create(ctx context.Context, data *entity.Critique) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *critiqueRepository) GetByID(ctx context.Context, id string) (*entity.Critique, error) {
	var result entity.Critique
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *critiqueRepository) GetByPostID(ctx context.Context, postID string) ([]entity.Critique, error) {
	var result []entity.Critique
	err := xcontext.DB(ctx).
		Where("post_id=?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetEarliestByPostIDs returns the first critique of every given post which
// has at least one critique.
func (r *critiqueRepository) GetEarliestByPostIDs(
	ctx context.Context, postIDs []string,
) (map[string]entity.Critique, error) {
	if len(postIDs) == 0 {
		return map[string]entity.Critique{}, nil
	}

	earliest := xcontext.DB(ctx).
		Model(&entity.Critique{}).
		Select("post_id, MIN(created_at)").
		Where("post_id IN (?)", postIDs).
		Group("post_id")

	var critiques []entity.Critique
	err := xcontext.DB(ctx).
		Where("(post_id, created_at) IN (?)", earliest).
		Order("created_at ASC").
		Order("id ASC").
		Find(&critiques).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]entity.Critique, len(critiques))
	for _, c := range critiques {
		if _, ok := result[c.PostID]; !ok {
			result[c.PostID] = c
		}
	}

	return result, nil
}

func (r *critiqueRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	type row struct {
		PostID string
		Count  int64
	}

	var rows []row
	err := xcontext.DB(ctx).
		Model(&entity.Critique{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN (?)", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		result[r.PostID] = r.Count
	}

	return result, nil
}

func (r *critiqueRepository) GetIDsByPostID(ctx context.Context, postID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.Critique{}).Where("post_id=?", postID).Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteUnlessBest removes the critique only if no post chose it as best. It
// returns gorm.ErrRecordNotFound when nothing was deleted.
func (r *critiqueRepository) DeleteUnlessBest(ctx context.Context, id string) error {
	chosen := xcontext.DB(ctx).Model(&entity.Post{}).Select("1").Where("best_critique_id=?", id)
	tx := xcontext.DB(ctx).Where("id=? AND NOT EXISTS (?)", id, chosen).Delete(&entity.Critique{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *critiqueRepository) DeleteByPostID(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Where("post_id=?", postID).Delete(&entity.Critique{}).Error
}

func (r *critiqueRepository) IncreaseLikeCount(ctx context.Context, id string, delta int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Critique{}).
		Where("id=?", id).
		Update("like_count", gorm.Expr("like_count+?", delta))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
