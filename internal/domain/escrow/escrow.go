package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tensaku-lab/backend/internal/common"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/payment"
	"github.com/tensaku-lab/backend/pkg/pubsub"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"github.com/tensaku-lab/backend/pkg/xredis"
	"gorm.io/gorm"
)

// Manager owns the reward state of posts:
//
//	none -> captured -> best_chosen -> settled
//
// A failed capture never persists the post. A failed payout leaves the post
// in best_chosen so Settle can be called again.
type Manager struct {
	postRepo        repository.PostRepository
	critiqueRepo    repository.CritiqueRepository
	userRepo        repository.UserRepository
	rewardEventRepo repository.RewardEventRepository

	processor   payment.Processor
	redisClient xredis.Client
	publisher   pubsub.Publisher
}

func NewManager(
	postRepo repository.PostRepository,
	critiqueRepo repository.CritiqueRepository,
	userRepo repository.UserRepository,
	rewardEventRepo repository.RewardEventRepository,
	processor payment.Processor,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *Manager {
	return &Manager{
		postRepo:        postRepo,
		critiqueRepo:    critiqueRepo,
		userRepo:        userRepo,
		rewardEventRepo: rewardEventRepo,
		processor:       processor,
		redisClient:     redisClient,
		publisher:       publisher,
	}
}

type RewardRequest struct {
	Amount         int64
	MethodToken    string
	IdempotencyKey string
}

// Validate checks the request without calling anything external.
func (r RewardRequest) Validate(ctx context.Context) error {
	if r.Amount == 0 {
		return nil
	}

	cfg := xcontext.Configs(ctx).Reward
	if r.Amount < cfg.MinAmount || r.Amount > cfg.MaxAmount {
		return errorx.New(errorx.BadRequest,
			"Reward amount must be between %d and %d", cfg.MinAmount, cfg.MaxAmount)
	}

	if r.MethodToken == "" {
		return errorx.New(errorx.BadRequest, "Require a payment method for a reward")
	}

	return nil
}

// CreatePost persists the draft. With a positive amount the payment is
// captured first, and the post is only written with the payment reference of
// a successful capture.
func (m *Manager) CreatePost(ctx context.Context, draft *entity.Post, req RewardRequest) error {
	if err := req.Validate(ctx); err != nil {
		return err
	}

	if req.Amount == 0 {
		draft.RewardAmount = 0
		draft.RewardStatus = entity.RewardNone
		if err := m.postRepo.Create(ctx, draft); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create post: %v", err)
			return errorx.Unknown
		}

		return nil
	}

	idempotencyKey := draft.ID
	if req.IdempotencyKey != "" {
		idempotencyKey = req.IdempotencyKey
		lockKey := common.RedisKeyCaptureLock(draft.AuthorID, req.IdempotencyKey)
		locked, err := m.redisClient.SetNX(ctx, lockKey, draft.ID, xcontext.Configs(ctx).Reward.CaptureLockTTL)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot lock capture: %v", err)
			return errorx.Unknown
		}

		if !locked {
			return errorx.New(errorx.Conflict, "The reward is being captured by another request")
		}
	}

	result, err := m.processor.Capture(ctx, payment.CaptureRequest{
		Amount:         req.Amount,
		Currency:       xcontext.Configs(ctx).Reward.Currency,
		MethodToken:    req.MethodToken,
		IdempotencyKey: idempotencyKey,
		Metadata: map[string]string{
			"post_id":   draft.ID,
			"author_id": draft.AuthorID,
		},
	})
	if err == nil && result.Status != payment.StatusSucceeded {
		err = fmt.Errorf("payment is %s", result.Status)
	}

	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot capture reward of post %s: %v", draft.ID, err)
		if req.IdempotencyKey != "" {
			lockKey := common.RedisKeyCaptureLock(draft.AuthorID, req.IdempotencyKey)
			if err := m.redisClient.Del(ctx, lockKey); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot release capture lock: %v", err)
			}
		}

		return errorx.New(errorx.CaptureFailed, "Cannot capture the reward: %v", err)
	}

	draft.RewardAmount = req.Amount
	draft.RewardStatus = entity.RewardCaptured
	draft.PaymentReference = nullString(result.Reference)

	event := newEvent(ctx, entity.RewardEventCaptured, draft, "")
	if err := m.persistCaptured(ctx, draft, event); err != nil {
		return m.reconcile(ctx, draft, "create_post", err)
	}

	m.publish(ctx, event)
	return nil
}

func (m *Manager) persistCaptured(ctx context.Context, post *entity.Post, event *entity.RewardEvent) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := m.postRepo.Create(ctx, post); err != nil {
		return err
	}

	if err := m.rewardEventRepo.Create(ctx, event); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// reconcile reports money which moved at the processor without a local
// record. It must not be silent.
func (m *Manager) reconcile(ctx context.Context, post *entity.Post, stage string, cause error) error {
	xcontext.Logger(ctx).Errorf(
		"RECONCILIATION REQUIRED: post=%s author=%s reference=%s amount=%d stage=%s: %v",
		post.ID, post.AuthorID, post.PaymentReference.String, post.RewardAmount, stage, cause)
	common.PromCounters[common.RewardReconciliationRequired].WithLabelValues(stage).Inc()

	event := newEvent(ctx, entity.RewardEventReconcileRequired, post, cause.Error())
	if err := m.rewardEventRepo.Create(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record reconciliation event of post %s: %v", post.ID, err)
	}
	m.publish(ctx, event)

	return errorx.New(errorx.ReconciliationRequired,
		"The payment %s was captured but could not be recorded, please contact support",
		post.PaymentReference.String)
}

// SelectBestCritique irrevocably picks the critique whose author receives the
// reward. Concurrent calls for one post have exactly one winner.
func (m *Manager) SelectBestCritique(
	ctx context.Context, postID, critiqueID, requesterID string,
) (*entity.Post, error) {
	post, err := m.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
		return nil, errorx.Unknown
	}

	if post.AuthorID != requesterID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the author can choose the best critique")
	}

	critique, err := m.critiqueRepo.GetByID(ctx, critiqueID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get critique: %v", err)
		return nil, errorx.Unknown
	}

	if err != nil || critique.PostID != post.ID {
		return nil, errorx.New(errorx.InvalidCritique, "The critique does not belong to the post")
	}

	if critique.AuthorID == post.AuthorID {
		return nil, errorx.New(errorx.SelfSelection, "Cannot choose your own critique")
	}

	if post.RewardStatus != entity.RewardCaptured {
		return nil, errorx.New(errorx.NoActiveReward, "The post has no reward to give")
	}

	post.BestCritiqueID = nullString(critique.ID)
	post.RewardStatus = entity.RewardBestChosen
	event := newEvent(ctx, entity.RewardEventBestSelected, post, "")

	if err := m.persistSelection(ctx, post, event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NoActiveReward, "The best critique was already chosen")
		}

		xcontext.Logger(ctx).Errorf("Cannot choose best critique: %v", err)
		return nil, errorx.Unknown
	}

	m.publish(ctx, event)
	return post, nil
}

func (m *Manager) persistSelection(ctx context.Context, post *entity.Post, event *entity.RewardEvent) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := m.postRepo.SetBestCritique(ctx, post.ID, post.BestCritiqueID.String); err != nil {
		return err
	}

	if err := m.rewardEventRepo.Create(ctx, event); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// Settle pays the reward of a post in best_chosen to the author of the best
// critique. Settling a settled post is a no-op.
func (m *Manager) Settle(ctx context.Context, postID string) (*entity.Post, error) {
	post, err := m.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
		return nil, errorx.Unknown
	}

	switch post.RewardStatus {
	case entity.RewardSettled:
		return post, nil
	case entity.RewardBestChosen:
	default:
		return nil, errorx.New(errorx.NoActiveReward, "The post has no reward waiting for settlement")
	}

	destination, err := m.payoutDestination(ctx, post)
	if err != nil {
		return nil, m.settlementFailed(ctx, post, "no_payout_account", err)
	}

	err = m.processor.Payout(ctx, payment.PayoutRequest{
		Reference:   post.PaymentReference.String,
		Amount:      post.RewardAmount,
		Currency:    xcontext.Configs(ctx).Reward.Currency,
		Destination: destination,
	})
	if err != nil {
		return nil, m.settlementFailed(ctx, post, "payout", err)
	}

	event := newEvent(ctx, entity.RewardEventSettled, post, destination)
	if err := m.persistSettlement(ctx, post, event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Someone else recorded the settlement.
			settled, err := m.postRepo.GetByID(ctx, post.ID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
				return nil, errorx.Unknown
			}

			return settled, nil
		}

		// The payout is idempotent, another Settle records it later.
		return nil, m.settlementFailed(ctx, post, "record", err)
	}

	post.RewardStatus = entity.RewardSettled
	post.RewardSettled = true
	m.publish(ctx, event)
	return post, nil
}

func (m *Manager) payoutDestination(ctx context.Context, post *entity.Post) (string, error) {
	critique, err := m.critiqueRepo.GetByID(ctx, post.BestCritiqueID.String)
	if err != nil {
		return "", fmt.Errorf("cannot get best critique: %w", err)
	}

	user, err := m.userRepo.GetByID(ctx, critique.AuthorID)
	if err != nil {
		return "", fmt.Errorf("cannot get critique author: %w", err)
	}

	if !user.PayoutAccount.Valid || user.PayoutAccount.String == "" {
		return "", payment.ErrNoPayoutAccount
	}

	return user.PayoutAccount.String, nil
}

func (m *Manager) persistSettlement(ctx context.Context, post *entity.Post, event *entity.RewardEvent) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := m.postRepo.MarkSettled(ctx, post.ID); err != nil {
		return err
	}

	if err := m.rewardEventRepo.Create(ctx, event); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

func (m *Manager) settlementFailed(ctx context.Context, post *entity.Post, reason string, cause error) error {
	xcontext.Logger(ctx).Warnf("Cannot settle reward of post %s (%s): %v", post.ID, reason, cause)
	common.PromCounters[common.RewardSettlementFailure].WithLabelValues(reason).Inc()

	if err := m.postRepo.RequeueSettlement(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot requeue settlement of post %s: %v", post.ID, err)
	}

	event := newEvent(ctx, entity.RewardEventSettlementFailed, post, cause.Error())
	if err := m.rewardEventRepo.Create(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record settlement failure of post %s: %v", post.ID, err)
	}
	m.publish(ctx, event)

	return errorx.New(errorx.SettlementFailed, "Cannot settle the reward: %v", cause)
}

// Capture is what is known about a captured payment reference.
type Capture struct {
	Reference string
	AuthorID  string
	PostID    string
	Amount    int64
	CreatedAt time.Time

	// Post is nil when the payment was captured but the post could not be
	// stored.
	Post            *entity.Post
	ProcessorStatus string
}

// Captured answers whether the payment reference was captured, for clients
// which lost the response of a paid post creation. A capture whose post was
// never stored is found through its reconciliation event.
func (m *Manager) Captured(ctx context.Context, reference string) (*Capture, error) {
	capture, err := m.localCapture(ctx, reference)
	if err != nil {
		return nil, err
	}

	status, err := m.processor.Status(ctx, reference)
	if err != nil {
		if !errors.Is(err, payment.ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot get payment status of %s: %v", reference, err)
			return nil, errorx.New(errorx.Unavailable, "Payment processor is unavailable")
		}

		status = payment.StatusUnknown
	}

	capture.ProcessorStatus = status
	return capture, nil
}

func (m *Manager) localCapture(ctx context.Context, reference string) (*Capture, error) {
	post, err := m.postRepo.GetByPaymentReference(ctx, reference)
	if err == nil {
		return &Capture{
			Reference: reference,
			AuthorID:  post.AuthorID,
			PostID:    post.ID,
			Amount:    post.RewardAmount,
			CreatedAt: post.CreatedAt,
			Post:      post,
		}, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get post by payment reference: %v", err)
		return nil, errorx.Unknown
	}

	event, err := m.rewardEventRepo.GetLatestByPaymentReference(
		ctx, reference, entity.RewardEventReconcileRequired)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found payment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get reconciliation event: %v", err)
		return nil, errorx.Unknown
	}

	return &Capture{
		Reference: reference,
		AuthorID:  event.AuthorID,
		PostID:    event.PostID,
		Amount:    event.Amount,
		CreatedAt: event.CreatedAt,
	}, nil
}

// Pending lists posts whose settlement did not complete.
func (m *Manager) Pending(ctx context.Context, limit int) ([]entity.Post, error) {
	return m.postRepo.GetByRewardStatus(ctx, entity.RewardBestChosen, limit)
}
