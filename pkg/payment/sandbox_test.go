package payment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_sandboxProcessor_Capture(t *testing.T) {
	ctx := context.Background()
	p := NewSandboxProcessor()

	result, err := p.Capture(ctx, CaptureRequest{Amount: 1000, Currency: "jpy", MethodToken: "pm_card_visa"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Reference)
	require.Equal(t, StatusSucceeded, result.Status)

	status, err := p.Status(ctx, result.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, status)

	_, err = p.Capture(ctx, CaptureRequest{Amount: 1000, MethodToken: SandboxTokenDeclined})
	require.ErrorIs(t, err, ErrDeclined)

	_, err = p.Status(ctx, "pi_unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_sandboxProcessor_CaptureIdempotency(t *testing.T) {
	ctx := context.Background()
	p := NewSandboxProcessor()

	first, err := p.Capture(ctx, CaptureRequest{Amount: 500, MethodToken: "pm_card_visa", IdempotencyKey: "k1"})
	require.NoError(t, err)

	second, err := p.Capture(ctx, CaptureRequest{Amount: 500, MethodToken: "pm_card_visa", IdempotencyKey: "k1"})
	require.NoError(t, err)
	require.Equal(t, first.Reference, second.Reference)
}

func Test_sandboxProcessor_CaptureIdempotency_Concurrent(t *testing.T) {
	ctx := context.Background()
	p := NewSandboxProcessor()

	const n = 32
	references := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := p.Capture(ctx, CaptureRequest{Amount: 500, MethodToken: "pm_card_visa", IdempotencyKey: "k1"})
			if err != nil {
				errs[i] = err
				return
			}
			references[i] = result.Reference
		}(i)
	}
	wg.Wait()

	for i := range references {
		require.NoError(t, errs[i])
		require.Equal(t, references[0], references[i])
	}
	require.Equal(t, 1, p.charges.Size())
}

func Test_sandboxProcessor_Payout(t *testing.T) {
	ctx := context.Background()
	p := NewSandboxProcessor()

	result, err := p.Capture(ctx, CaptureRequest{Amount: 1000, MethodToken: "pm_card_visa"})
	require.NoError(t, err)

	err = p.Payout(ctx, PayoutRequest{Reference: result.Reference, Amount: 1000})
	require.ErrorIs(t, err, ErrNoPayoutAccount)

	err = p.Payout(ctx, PayoutRequest{Reference: result.Reference, Amount: 999, Destination: "acct_1"})
	require.ErrorIs(t, err, ErrProcessorRejected)

	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Payout(ctx, PayoutRequest{Reference: result.Reference, Amount: 1000, Destination: "acct_1"})
		}()
	}
	wg.Wait()
	require.Equal(t, int64(1), p.Payouts())

	err = p.Payout(ctx, PayoutRequest{Reference: "pi_unknown", Amount: 1000, Destination: "acct_1"})
	require.ErrorIs(t, err, ErrNotFound)
}
