package cron

import (
	"context"
	"time"

	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

const settlementRetryBatch = 100

type Settler interface {
	Pending(ctx context.Context, limit int) ([]entity.Post, error)
	Settle(ctx context.Context, postID string) (*entity.Post, error)
}

// SettlementRetryCronJob re-drives the payout of every post whose best
// critique was chosen but whose reward was not settled.
type SettlementRetryCronJob struct {
	settler  Settler
	interval time.Duration
}

func NewSettlementRetryCronJob(settler Settler, interval time.Duration) *SettlementRetryCronJob {
	return &SettlementRetryCronJob{settler: settler, interval: interval}
}

func (job *SettlementRetryCronJob) Do(ctx context.Context) {
	posts, err := job.settler.Pending(ctx, settlementRetryBatch)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get posts waiting for settlement: %v", err)
		return
	}

	settled := 0
	for _, post := range posts {
		if _, err := job.settler.Settle(ctx, post.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot settle reward of post %s: %v", post.ID, err)
			continue
		}
		settled++
	}

	common.PromGauges[common.RewardPendingSettlement].WithLabelValues().Set(float64(len(posts) - settled))

	if len(posts) > 0 {
		xcontext.Logger(ctx).Infof("Settled %d of %d pending rewards", settled, len(posts))
	}
}

func (job *SettlementRetryCronJob) RunNow() bool {
	return true
}

func (job *SettlementRetryCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
