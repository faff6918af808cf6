package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tensaku-lab/backend/pkg/payment"
)

type PaymentProcessor struct {
	mock.Mock
}

func (p *PaymentProcessor) Capture(
	arg1 context.Context, arg2 payment.CaptureRequest,
) (*payment.CaptureResult, error) {
	args := p.Called(arg1, arg2)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CaptureResult), args.Error(1)
}

func (p *PaymentProcessor) Payout(arg1 context.Context, arg2 payment.PayoutRequest) error {
	args := p.Called(arg1, arg2)
	return args.Error(0)
}

func (p *PaymentProcessor) Status(arg1 context.Context, arg2 string) (string, error) {
	args := p.Called(arg1, arg2)
	return args.String(0), args.Error(1)
}
