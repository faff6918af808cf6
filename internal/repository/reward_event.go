package repository

import (
	"context"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type RewardEventRepository interface {
	Create(ctx context.Context, data *entity.RewardEvent) error
	GetByPostID(ctx context.Context, postID string) ([]entity.RewardEvent, error)
	GetLatestByPaymentReference(
		ctx context.Context, reference string, t entity.RewardEventType,
	) (*entity.RewardEvent, error)
}

type rewardEventRepository struct{}

func NewRewardEventRepository() *rewardEventRepository {
	return &rewardEventRepository{}
}

func (r *rewardEventRepository) Create(ctx context.Context, data *entity.RewardEvent) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *rewardEventRepository) GetByPostID(ctx context.Context, postID string) ([]entity.RewardEvent, error) {
	var result []entity.RewardEvent
	err := xcontext.DB(ctx).Where("post_id=?", postID).Order("id ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardEventRepository) GetLatestByPaymentReference(
	ctx context.Context, reference string, t entity.RewardEventType,
) (*entity.RewardEvent, error) {
	var result entity.RewardEvent
	err := xcontext.DB(ctx).
		Where("payment_reference=? AND type=?", reference, t).
		Order("id DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
