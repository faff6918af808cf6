package payment

import (
	"context"
	"errors"
)

var (
	ErrDeclined           = errors.New("payment method was declined")
	ErrNotFound           = errors.New("payment not found")
	ErrNoPayoutAccount    = errors.New("destination has no payout account")
	ErrProcessorRejected  = errors.New("payment processor rejected the request")
	ErrProcessorUnhealthy = errors.New("payment processor is unavailable")
)

const (
	StatusSucceeded     = "succeeded"
	StatusProcessing    = "processing"
	StatusRequiresPM    = "requires_payment_method"
	StatusCanceled      = "canceled"
	StatusUnknown       = "unknown"
	StatusTransferPaid  = "paid"
	StatusTransferError = "failed"
)

type CaptureRequest struct {
	Amount         int64
	Currency       string
	MethodToken    string
	IdempotencyKey string
	Metadata       map[string]string
}

type CaptureResult struct {
	Reference string
	Status    string
}

type PayoutRequest struct {
	Reference   string
	Amount      int64
	Currency    string
	Destination string
}

// Processor is the external payment capability. Payout must be idempotent on
// the reference, calling it twice for the same reference moves funds once.
type Processor interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
	Payout(ctx context.Context, req PayoutRequest) error
	Status(ctx context.Context, reference string) (string, error)
}
