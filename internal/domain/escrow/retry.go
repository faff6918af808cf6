package escrow

import (
	"context"
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/pubsub"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

// NewSettlementFailedHandler re-drives the settlement of a post once delay has
// passed since its settlement_failed event. Events are handled one at a time
// in topic order.
func (m *Manager) NewSettlementFailedHandler(delay time.Duration) pubsub.SubscribeHandler {
	return func(ctx context.Context, pack *pubsub.Pack, t time.Time) {
		event, err := ParseEvent(pack.Msg)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot parse reward event: %v", err)
			return
		}

		if event.Type != string(entity.RewardEventSettlementFailed) {
			xcontext.Logger(ctx).Warnf("Unexpected reward event %s of post %s", event.Type, event.PostID)
			return
		}

		at := event.At
		if at.IsZero() {
			at = t
		}

		if wait := time.Until(at.Add(delay)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		post, err := m.Settle(ctx, event.PostID)
		if err != nil {
			if errorx.Is(err, errorx.NoActiveReward) || errorx.Is(err, errorx.NotFound) {
				xcontext.Logger(ctx).Infof("Skip settlement retry of post %s: %v", event.PostID, err)
				return
			}

			xcontext.Logger(ctx).Warnf("Settlement retry of post %s failed: %v", event.PostID, err)
			return
		}

		xcontext.Logger(ctx).Infof("Settled reward of post %s on retry (settled=%t)", post.ID, post.RewardSettled)
	}
}
