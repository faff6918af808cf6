package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// AuthorScope restricts a query to a set of authors. Everyone ignores
// AuthorIDs.
type AuthorScope struct {
	AuthorIDs []string
	Everyone  bool
}

func (s AuthorScope) apply(tx *gorm.DB, column string) *gorm.DB {
	if s.Everyone {
		return tx
	}
	return tx.Where(column+" IN (?)", s.AuthorIDs)
}

func (s AuthorScope) empty() bool {
	return !s.Everyone && len(s.AuthorIDs) == 0
}

type PostRepository interface {
	Create(ctx context.Context, data *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Post, error)
	GetByPaymentReference(ctx context.Context, reference string) (*entity.Post, error)
	GetLatest(ctx context.Context, scope AuthorScope, limit int) ([]entity.Post, error)
	GetByRewardStatus(ctx context.Context, status entity.RewardStatus, limit int) ([]entity.Post, error)
	GetCapturedByAuthor(ctx context.Context, authorID string) ([]entity.Post, error)
	Delete(ctx context.Context, id string) error
	IncreaseRepostCount(ctx context.Context, id string, delta int64) error
	SetBestCritique(ctx context.Context, id, critiqueID string) error
	ClearBestCritique(ctx context.Context, id string) error
	RequeueSettlement(ctx context.Context, id string) error
	MarkSettled(ctx context.Context, id string) error
}

type postRepository struct{}

func NewPostRepository() *postRepository {
	return &postRepository{}
}

func (r *postRepository) Create(ctx context.Context, data *entity.Post) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var result entity.Post
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var result []entity.Post
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) GetByPaymentReference(ctx context.Context, reference string) (*entity.Post, error) {
	var result entity.Post
	if err := xcontext.DB(ctx).Where("payment_reference=?", reference).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *postRepository) GetLatest(ctx context.Context, scope AuthorScope, limit int) ([]entity.Post, error) {
	if scope.empty() {
		return nil, nil
	}

	var result []entity.Post
	tx := scope.apply(xcontext.DB(ctx), "author_id").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) GetByRewardStatus(
	ctx context.Context, status entity.RewardStatus, limit int,
) ([]entity.Post, error) {
	var result []entity.Post
	err := xcontext.DB(ctx).
		Where("reward_status=?", status).
		Order("updated_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) GetCapturedByAuthor(ctx context.Context, authorID string) ([]entity.Post, error) {
	var result []entity.Post
	err := xcontext.DB(ctx).
		Where("author_id=? AND payment_reference IS NOT NULL", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Where("id=?", id).Delete(&entity.Post{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *postRepository) IncreaseRepostCount(ctx context.Context, id string, delta int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Post{}).
		Where("id=?", id).
		Update("repost_count", gorm.Expr("repost_count+?", delta))
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

// SetBestCritique moves a post from captured to best_chosen. It only succeeds
// while no best critique was chosen, otherwise gorm.ErrRecordNotFound is
// returned and the post is left untouched.
func (r *postRepository) SetBestCritique(ctx context.Context, id, critiqueID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Post{}).
		Where("id=? AND reward_status=? AND best_critique_id IS NULL", id, entity.RewardCaptured).
		Updates(map[string]any{
			"best_critique_id": critiqueID,
			"reward_status":    entity.RewardBestChosen,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ClearBestCritique drops the reference to the best critique of a settled
// post so its critiques can be deleted together with the post.
func (r *postRepository) ClearBestCritique(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.Post{}).
		Where("id=? AND reward_status=?", id, entity.RewardSettled).
		Update("best_critique_id", nil).Error
}

// RequeueSettlement moves a post waiting for settlement to the end of
// GetByRewardStatus.
func (r *postRepository) RequeueSettlement(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.Post{}).
		Where("id=? AND reward_status=?", id, entity.RewardBestChosen).
		Update("updated_at", time.Now()).Error
}

// MarkSettled moves a post from best_chosen to settled. It returns
// gorm.ErrRecordNotFound if the post is not waiting for settlement.
func (r *postRepository) MarkSettled(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Post{}).
		Where("id=? AND reward_status=? AND best_critique_id IS NOT NULL", id, entity.RewardBestChosen).
		Updates(map[string]any{
			"reward_status":  entity.RewardSettled,
			"reward_settled": true,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
