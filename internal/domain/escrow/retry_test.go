package escrow_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/domain/escrow"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/payment"
	"github.com/tensaku-lab/backend/pkg/pubsub"
	"github.com/tensaku-lab/backend/pkg/testutil"
)

func settlementFailedPack(t *testing.T, postID string, at time.Time) *pubsub.Pack {
	b, err := json.Marshal(escrow.Event{
		PostID: postID,
		Type:   string(entity.RewardEventSettlementFailed),
		At:     at,
	})
	require.NoError(t, err)

	return &pubsub.Pack{Key: []byte(postID), Msg: b}
}

func Test_Manager_NewSettlementFailedHandler(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	postRepo := repository.NewPostRepository()
	require.NoError(t, postRepo.SetBestCritique(ctx, testutil.Post2.ID, testutil.Critique1.ID))

	payouts := 0
	processor := &testutil.MockPaymentProcessor{
		PayoutFunc: func(ctx context.Context, req payment.PayoutRequest) error {
			payouts++
			return nil
		},
	}

	manager := newManager(processor, &testutil.MockRedisClient{}, &testutil.RecordPublisher{})
	handler := manager.NewSettlementFailedHandler(time.Minute)

	// Other event types are ignored.
	b, err := json.Marshal(escrow.Event{PostID: testutil.Post2.ID, Type: string(entity.RewardEventSettled)})
	require.NoError(t, err)
	handler(ctx, &pubsub.Pack{Msg: b}, time.Now())
	require.Equal(t, 0, payouts)

	// Waiting for the delay is interrupted by cancellation.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	handler(cancelled, settlementFailedPack(t, testutil.Post2.ID, time.Now()), time.Now())
	require.Equal(t, 0, payouts)

	handler(ctx, settlementFailedPack(t, testutil.Post2.ID, time.Now().Add(-time.Hour)), time.Now())
	require.Equal(t, 1, payouts)

	post, err := postRepo.GetByID(ctx, testutil.Post2.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RewardSettled, post.RewardStatus)
	require.True(t, post.RewardSettled)

	// A stale event for a settled post does not pay twice.
	handler(ctx, settlementFailedPack(t, testutil.Post2.ID, time.Now().Add(-time.Hour)), time.Now())
	require.Equal(t, 1, payouts)

	// Malformed messages are dropped.
	handler(ctx, &pubsub.Pack{Msg: []byte("{")}, time.Now())
	require.Equal(t, 1, payouts)
}
