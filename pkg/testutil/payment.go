package testutil

import (
	"context"

	"github.com/tensaku-lab/backend/pkg/payment"
)

type MockPaymentProcessor struct {
	CaptureFunc func(context.Context, payment.CaptureRequest) (*payment.CaptureResult, error)
	PayoutFunc  func(context.Context, payment.PayoutRequest) error
	StatusFunc  func(context.Context, string) (string, error)
}

func (m *MockPaymentProcessor) Capture(
	ctx context.Context, req payment.CaptureRequest,
) (*payment.CaptureResult, error) {
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx, req)
	}

	return &payment.CaptureResult{Reference: "pi_mock", Status: payment.StatusSucceeded}, nil
}

func (m *MockPaymentProcessor) Payout(ctx context.Context, req payment.PayoutRequest) error {
	if m.PayoutFunc != nil {
		return m.PayoutFunc(ctx, req)
	}

	return nil
}

func (m *MockPaymentProcessor) Status(ctx context.Context, reference string) (string, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, reference)
	}

	return payment.StatusSucceeded, nil
}
