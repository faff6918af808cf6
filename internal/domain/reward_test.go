package domain

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/mocks"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/payment"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

func newTestRewardDomain(processor payment.Processor) *rewardDomain {
	return NewRewardDomain(repository.NewPostRepository(), newTestEscrow(processor))
}

func Test_rewardDomain_SelectBestCritique(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	processor := &mocks.PaymentProcessor{}
	processor.On("Payout", mock.Anything, payment.PayoutRequest{
		Reference:   testutil.Post2.PaymentReference.String,
		Amount:      testutil.Post2.RewardAmount,
		Currency:    xcontext.Configs(ctx).Reward.Currency,
		Destination: "acct_bob",
	}).Return(nil).Once()

	domain := newTestRewardDomain(processor)

	resp, err := domain.SelectBestCritique(ctx, &model.SelectBestCritiqueRequest{
		PostID:     testutil.Post2.ID,
		CritiqueID: testutil.Critique1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.RewardSettled), resp.Status)
	require.Equal(t, testutil.Critique1.ID, resp.BestCritiqueID)
	require.True(t, resp.Settled)

	// A second choice is refused once the reward is gone.
	_, err = domain.SelectBestCritique(ctx, &model.SelectBestCritiqueRequest{
		PostID:     testutil.Post2.ID,
		CritiqueID: testutil.Critique3.ID,
	})
	require.True(t, errorx.Is(err, errorx.NoActiveReward))

	processor.AssertExpectations(t)
}

func Test_rewardDomain_SelectBestCritique_Invalid(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newTestRewardDomain(&mocks.PaymentProcessor{})

	testCases := []struct {
		name     string
		userID   string
		req      *model.SelectBestCritiqueRequest
		wantCode errorx.Code
	}{
		{
			name:     "anonymous",
			userID:   "",
			req:      &model.SelectBestCritiqueRequest{PostID: testutil.Post2.ID, CritiqueID: testutil.Critique1.ID},
			wantCode: errorx.Unauthenticated,
		},
		{
			name:     "not the author",
			userID:   testutil.User2.ID,
			req:      &model.SelectBestCritiqueRequest{PostID: testutil.Post2.ID, CritiqueID: testutil.Critique1.ID},
			wantCode: errorx.PermissionDenied,
		},
		{
			name:     "critique of another post",
			userID:   testutil.User1.ID,
			req:      &model.SelectBestCritiqueRequest{PostID: testutil.Post2.ID, CritiqueID: testutil.Critique4.ID},
			wantCode: errorx.InvalidCritique,
		},
		{
			name:     "own critique",
			userID:   testutil.User1.ID,
			req:      &model.SelectBestCritiqueRequest{PostID: testutil.Post2.ID, CritiqueID: testutil.Critique2.ID},
			wantCode: errorx.SelfSelection,
		},
		{
			name:     "post without reward",
			userID:   testutil.User2.ID,
			req:      &model.SelectBestCritiqueRequest{PostID: testutil.Post1.ID, CritiqueID: testutil.Critique4.ID},
			wantCode: errorx.NoActiveReward,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.SelectBestCritique(xcontext.WithRequestUserID(ctx, tc.userID), tc.req)
			require.True(t, errorx.Is(err, tc.wantCode), err)
		})
	}
}

func Test_rewardDomain_Settle(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	processor := &mocks.PaymentProcessor{}
	processor.On("Payout", mock.Anything, mock.Anything).Return(payment.ErrProcessorUnhealthy).Once()
	processor.On("Payout", mock.Anything, mock.Anything).Return(nil).Once()

	domain := newTestRewardDomain(processor)

	_, err := domain.SelectBestCritique(ctx, &model.SelectBestCritiqueRequest{
		PostID:     testutil.Post2.ID,
		CritiqueID: testutil.Critique1.ID,
	})
	require.True(t, errorx.Is(err, errorx.SettlementFailed))

	// The choice is kept.
	post, err := repository.NewPostRepository().GetByID(ctx, testutil.Post2.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RewardBestChosen, post.RewardStatus)

	_, err = domain.Settle(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.SettleRewardRequest{
		PostID: testutil.Post2.ID,
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	resp, err := domain.Settle(ctx, &model.SettleRewardRequest{PostID: testutil.Post2.ID})
	require.NoError(t, err)
	require.Equal(t, string(entity.RewardSettled), resp.Status)

	// Settling again does not pay twice.
	resp, err = domain.Settle(ctx, &model.SettleRewardRequest{PostID: testutil.Post2.ID})
	require.NoError(t, err)
	require.True(t, resp.Settled)

	processor.AssertNumberOfCalls(t, "Payout", 2)
}

func Test_rewardDomain_Settle_NoPayoutAccount(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	processor := &mocks.PaymentProcessor{}
	domain := newTestRewardDomain(processor)

	_, err := domain.SelectBestCritique(ctx, &model.SelectBestCritiqueRequest{
		PostID:     testutil.Post2.ID,
		CritiqueID: testutil.Critique3.ID,
	})
	require.True(t, errorx.Is(err, errorx.SettlementFailed))

	processor.AssertNotCalled(t, "Payout", mock.Anything, mock.Anything)
}

func Test_rewardDomain_ConfirmPayment(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	processor := &mocks.PaymentProcessor{}
	processor.On("Status", mock.Anything, testutil.Post2.PaymentReference.String).
		Return(payment.StatusSucceeded, nil)

	domain := newTestRewardDomain(processor)

	resp, err := domain.ConfirmPayment(ctx, &model.ConfirmPaymentRequest{
		PaymentReference: testutil.Post2.PaymentReference.String,
	})
	require.NoError(t, err)
	require.Equal(t, testutil.Post2.ID, resp.PostID)
	require.Equal(t, payment.StatusSucceeded, resp.ProcessorStatus)
	require.Equal(t, int64(1000), resp.Amount)
	require.Equal(t, string(entity.RewardCaptured), resp.Status)

	_, err = domain.ConfirmPayment(
		xcontext.WithRequestUserID(ctx, testutil.User2.ID),
		&model.ConfirmPaymentRequest{PaymentReference: testutil.Post2.PaymentReference.String},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = domain.ConfirmPayment(ctx, &model.ConfirmPaymentRequest{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = domain.ConfirmPayment(ctx, &model.ConfirmPaymentRequest{PaymentReference: "pi_unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_rewardDomain_ConfirmPayment_NotRecorded(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User4.ID)
	testutil.CreateFixtureDb(ctx)

	require.NoError(t, repository.NewRewardEventRepository().Create(ctx, &entity.RewardEvent{
		SnowFlakeBase:    entity.SnowFlakeBase{ID: 1},
		PostID:           "lost_post",
		AuthorID:         testutil.User4.ID,
		Type:             entity.RewardEventReconcileRequired,
		Amount:           700,
		PaymentReference: sql.NullString{String: "pi_lost", Valid: true},
	}))

	processor := &mocks.PaymentProcessor{}
	processor.On("Status", mock.Anything, "pi_lost").Return(payment.StatusSucceeded, nil)

	domain := newTestRewardDomain(processor)

	resp, err := domain.ConfirmPayment(ctx, &model.ConfirmPaymentRequest{PaymentReference: "pi_lost"})
	require.NoError(t, err)
	require.False(t, resp.Recorded)
	require.Equal(t, "lost_post", resp.PostID)
	require.Equal(t, int64(700), resp.Amount)
	require.Equal(t, payment.StatusSucceeded, resp.ProcessorStatus)
	require.Equal(t, string(entity.RewardEventReconcileRequired), resp.Status)

	_, err = domain.ConfirmPayment(
		xcontext.WithRequestUserID(ctx, testutil.User1.ID),
		&model.ConfirmPaymentRequest{PaymentReference: "pi_lost"},
	)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}

func Test_rewardDomain_GetPaymentHistory(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	testutil.CreateFixtureDb(ctx)

	domain := newTestRewardDomain(&mocks.PaymentProcessor{})

	resp, err := domain.GetPaymentHistory(ctx, &model.GetPaymentHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 1)
	require.Equal(t, testutil.Post2.PaymentReference.String, resp.Payments[0].PaymentReference)
	require.Empty(t, resp.Payments[0].ProcessorStatus)

	resp, err = domain.GetPaymentHistory(xcontext.WithRequestUserID(ctx, testutil.User2.ID), &model.GetPaymentHistoryRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Payments)
}
