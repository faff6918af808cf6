package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const maxPayoutAccountLength = 255

type UserDomain interface {
	Get(context.Context, *model.GetUserRequest) (*model.GetUserResponse, error)
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
	UpdatePayoutAccount(context.Context, *model.UpdatePayoutAccountRequest) (*model.UpdatePayoutAccountResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
}

func NewUserDomain(userRepo repository.UserRepository) *userDomain {
	return &userDomain{userRepo: userRepo}
}

func (d *userDomain) Get(ctx context.Context, req *model.GetUserRequest) (*model.GetUserResponse, error) {
	user, err := getUserByHandle(ctx, d.userRepo, req.Handle)
	if err != nil {
		return nil, err
	}

	resp := model.GetUserResponse(model.ConvertUser(user, user.ID == xcontext.RequestUserID(ctx)))
	return &resp, nil
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetMeResponse(model.ConvertUser(user, true))
	return &resp, nil
}

// UpdatePayoutAccount sets the account rewards are paid to. An empty account
// removes it.
func (d *userDomain) UpdatePayoutAccount(
	ctx context.Context, req *model.UpdatePayoutAccountRequest,
) (*model.UpdatePayoutAccountResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	account := strings.TrimSpace(req.PayoutAccount)
	if len(account) > maxPayoutAccountLength || strings.ContainsAny(account, " \t\n") {
		return nil, errorx.New(errorx.BadRequest, "Invalid payout account")
	}

	if err := d.userRepo.UpdatePayoutAccount(ctx, userID, account); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot update payout account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdatePayoutAccountResponse{}, nil
}
