package toggle

import (
	"context"
	"errors"

	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const defaultMaxAttempts = 3

// Relation is a binary relation stored as rows of a join table, keyed by
// (actor, target). Implementations read and write through xcontext.DB, so
// they run inside the transaction opened by the Engine.
type Relation interface {
	Name() string
	TargetExists(ctx context.Context, targetKey string) (bool, error)
	Exists(ctx context.Context, actorID, targetKey string) (bool, error)

	// Insert must fail with a duplicate key error when the row exists.
	Insert(ctx context.Context, actorID, targetKey string) error

	// Remove must return gorm.ErrRecordNotFound when no row was removed.
	Remove(ctx context.Context, actorID, targetKey string) error

	// ApplyCounter updates the denormalized counter of the target, if any.
	ApplyCounter(ctx context.Context, targetKey string, delta int64) error
}

type Result struct {
	Active       bool
	CounterDelta int64
}

// errRaced means a concurrent request changed the row between our read and
// our write. The whole read-modify-write is retried.
var errRaced = errors.New("membership changed concurrently")

type Engine struct {
	maxAttempts int
}

func NewEngine() *Engine {
	return &Engine{maxAttempts: defaultMaxAttempts}
}

// Toggle flips the membership of (actorID, targetKey). Self checks are the
// business of the caller.
func (e *Engine) Toggle(ctx context.Context, rel Relation, actorID, targetKey string) (*Result, error) {
	return e.run(ctx, rel, actorID, targetKey, func(active bool) bool { return !active })
}

// Set moves the membership to the wanted state. A zero CounterDelta in the
// result means the membership already was in that state.
func (e *Engine) Set(
	ctx context.Context, rel Relation, actorID, targetKey string, active bool,
) (*Result, error) {
	return e.run(ctx, rel, actorID, targetKey, func(bool) bool { return active })
}

func (e *Engine) run(
	ctx context.Context,
	rel Relation,
	actorID, targetKey string,
	next func(active bool) bool,
) (*Result, error) {
	if actorID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require authentication")
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		result, err := e.apply(ctx, rel, actorID, targetKey, next)
		if err == nil {
			return result, nil
		}

		if !errors.Is(err, errRaced) {
			return nil, err
		}

		xcontext.Logger(ctx).Debugf("Retry %s toggle of %s on %s (attempt %d)",
			rel.Name(), actorID, targetKey, attempt)
	}

	return nil, errorx.New(errorx.Conflict, "Too many concurrent changes, please try again")
}

func (e *Engine) apply(
	ctx context.Context,
	rel Relation,
	actorID, targetKey string,
	next func(active bool) bool,
) (*Result, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	exists, err := rel.TargetExists(ctx, targetKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check %s target: %v", rel.Name(), err)
		return nil, errorx.Unknown
	}

	if !exists {
		return nil, errorx.New(errorx.InvalidTarget, "Not found %s target", rel.Name())
	}

	active, err := rel.Exists(ctx, actorID, targetKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get %s membership: %v", rel.Name(), err)
		return nil, errorx.Unknown
	}

	want := next(active)
	if want == active {
		return &Result{Active: active, CounterDelta: 0}, nil
	}

	result := &Result{Active: want}
	if want {
		if err := rel.Insert(ctx, actorID, targetKey); err != nil {
			if repository.IsDuplicateKey(err) {
				return nil, errRaced
			}

			xcontext.Logger(ctx).Errorf("Cannot insert %s membership: %v", rel.Name(), err)
			return nil, errorx.Unknown
		}
		result.CounterDelta = 1
	} else {
		if err := rel.Remove(ctx, actorID, targetKey); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errRaced
			}

			xcontext.Logger(ctx).Errorf("Cannot remove %s membership: %v", rel.Name(), err)
			return nil, errorx.Unknown
		}
		result.CounterDelta = -1
	}

	if err := rel.ApplyCounter(ctx, targetKey, result.CounterDelta); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update %s counter: %v", rel.Name(), err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit %s toggle: %v", rel.Name(), err)
		return nil, errorx.Unknown
	}

	return result, nil
}
