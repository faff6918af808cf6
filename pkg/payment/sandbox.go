package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v2"
)

// Test tokens understood by the sandbox processor. Any other non-empty token
// is captured successfully.
const (
	SandboxTokenDeclined = "pm_card_chargeDeclined"
	SandboxTokenError    = "pm_card_processingError"
)

type sandboxCharge struct {
	reference string
	amount    int64
	currency  string
	status    string
	paidOut   bool
}

// sandboxProcessor keeps charges in memory. It is used for local development
// and for tests, and behaves like the real processor for idempotency.
type sandboxProcessor struct {
	charges     *xsync.MapOf[string, *sandboxCharge]
	idempotency *xsync.MapOf[string, string]
	payouts     *xsync.Counter
}

func NewSandboxProcessor() *sandboxProcessor {
	return &sandboxProcessor{
		charges:     xsync.NewMapOf[*sandboxCharge](),
		idempotency: xsync.NewMapOf[string](),
		payouts:     xsync.NewCounter(),
	}
}

func (p *sandboxProcessor) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrProcessorRejected)
	}

	switch req.MethodToken {
	case "":
		return nil, fmt.Errorf("%w: missing payment method", ErrProcessorRejected)
	case SandboxTokenDeclined:
		return nil, fmt.Errorf("%w: your card was declined", ErrDeclined)
	case SandboxTokenError:
		return nil, fmt.Errorf("%w: processing error", ErrProcessorUnhealthy)
	}

	charge := &sandboxCharge{
		reference: "pi_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		amount:    req.Amount,
		currency:  req.Currency,
		status:    StatusSucceeded,
	}

	if req.IdempotencyKey == "" {
		p.charges.Store(charge.reference, charge)
		return &CaptureResult{Reference: charge.reference, Status: charge.status}, nil
	}

	// The charge is stored while the key is held, so a replay never sees a
	// reference without its charge.
	p.idempotency.Compute(req.IdempotencyKey, func(existing string, loaded bool) (string, bool) {
		if loaded {
			if stored, ok := p.charges.Load(existing); ok {
				charge = stored
				return existing, false
			}
		}

		p.charges.Store(charge.reference, charge)
		return charge.reference, false
	})

	return &CaptureResult{Reference: charge.reference, Status: charge.status}, nil
}

func (p *sandboxProcessor) Payout(ctx context.Context, req PayoutRequest) error {
	if req.Destination == "" {
		return ErrNoPayoutAccount
	}

	var err error
	p.charges.Compute(req.Reference, func(charge *sandboxCharge, loaded bool) (*sandboxCharge, bool) {
		if !loaded {
			err = ErrNotFound
			return nil, true
		}

		if charge.amount != req.Amount {
			err = fmt.Errorf("%w: payout amount differs from the captured amount", ErrProcessorRejected)
			return charge, false
		}

		if !charge.paidOut {
			charge.paidOut = true
			p.payouts.Inc()
		}
		return charge, false
	})

	return err
}

func (p *sandboxProcessor) Status(ctx context.Context, reference string) (string, error) {
	charge, ok := p.charges.Load(reference)
	if !ok {
		return "", ErrNotFound
	}

	return charge.status, nil
}

// Payouts returns how many distinct payouts were executed.
func (p *sandboxProcessor) Payouts() int64 {
	return p.payouts.Value()
}
