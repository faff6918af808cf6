package domain

import (
	"context"

	"github.com/tensaku-lab/backend/internal/domain/escrow"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type RewardDomain interface {
	SelectBestCritique(context.Context, *model.SelectBestCritiqueRequest) (*model.SelectBestCritiqueResponse, error)
	Settle(context.Context, *model.SettleRewardRequest) (*model.SettleRewardResponse, error)
	ConfirmPayment(context.Context, *model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error)
	GetPaymentHistory(context.Context, *model.GetPaymentHistoryRequest) (*model.GetPaymentHistoryResponse, error)
}

type rewardDomain struct {
	postRepo      repository.PostRepository
	escrowManager *escrow.Manager
}

func NewRewardDomain(postRepo repository.PostRepository, escrowManager *escrow.Manager) *rewardDomain {
	return &rewardDomain{postRepo: postRepo, escrowManager: escrowManager}
}

// SelectBestCritique chooses the critique and settles the reward right away.
// If the payout fails the choice is kept and SettlementFailed is returned.
func (d *rewardDomain) SelectBestCritique(
	ctx context.Context, req *model.SelectBestCritiqueRequest,
) (*model.SelectBestCritiqueResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := d.escrowManager.SelectBestCritique(ctx, req.PostID, req.CritiqueID, userID)
	if err != nil {
		return nil, err
	}

	post, err = d.escrowManager.Settle(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	resp := model.SelectBestCritiqueResponse(model.ConvertReward(post))
	return &resp, nil
}

func (d *rewardDomain) Settle(ctx context.Context, req *model.SettleRewardRequest) (*model.SettleRewardResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := getPost(ctx, d.postRepo, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the author can settle the reward")
	}

	post, err = d.escrowManager.Settle(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	resp := model.SettleRewardResponse(model.ConvertReward(post))
	return &resp, nil
}

func (d *rewardDomain) ConfirmPayment(
	ctx context.Context, req *model.ConfirmPaymentRequest,
) (*model.ConfirmPaymentResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.PaymentReference == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty payment reference")
	}

	capture, err := d.escrowManager.Captured(ctx, req.PaymentReference)
	if err != nil {
		return nil, err
	}

	if capture.AuthorID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the payer can see the payment")
	}

	if capture.Post == nil {
		resp := model.ConfirmPaymentResponse(model.ConvertUnrecordedPayment(
			capture.Reference, capture.PostID, capture.Amount, capture.ProcessorStatus, capture.CreatedAt))
		return &resp, nil
	}

	resp := model.ConfirmPaymentResponse(model.ConvertPayment(capture.Post, capture.ProcessorStatus))
	return &resp, nil
}

func (d *rewardDomain) GetPaymentHistory(
	ctx context.Context, req *model.GetPaymentHistoryRequest,
) (*model.GetPaymentHistoryResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := d.postRepo.GetCapturedByAuthor(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payment history: %v", err)
		return nil, errorx.Unknown
	}

	payments := []model.Payment{}
	for i := range posts {
		payments = append(payments, model.ConvertPayment(&posts[i], ""))
	}

	return &model.GetPaymentHistoryResponse{Payments: payments}, nil
}
