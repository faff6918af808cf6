package payment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tensaku-lab/backend/config"
	"github.com/tensaku-lab/backend/pkg/api"
)

type stripeProcessor struct {
	apiGenerator api.Generator
	secretKey    string
}

func NewStripeProcessor(cfg config.PaymentConfigs) *stripeProcessor {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &stripeProcessor{
		apiGenerator: api.NewGenerator(httpClient, cfg.Endpoint),
		secretKey:    cfg.SecretKey,
	}
}

func (p *stripeProcessor) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	params := api.Parameter{
		"amount":         strconv.FormatInt(req.Amount, 10),
		"currency":       req.Currency,
		"payment_method": req.MethodToken,
		"confirm":        "true",
	}
	params["automatic_payment_methods[enabled]"] = "true"
	params["automatic_payment_methods[allow_redirects]"] = "never"
	for k, v := range req.Metadata {
		params[fmt.Sprintf("metadata[%s]", k)] = v
	}

	resp, err := p.apiGenerator.New("/v1/payment_intents").
		Body(params).
		POST(ctx, api.OAuth2("Bearer", p.secretKey), api.Idempotency(req.IdempotencyKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnhealthy, err)
	}

	if !resp.OK() {
		return nil, p.parseError(resp)
	}

	id, err := resp.Body.GetString("id")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorRejected, err)
	}

	status, err := resp.Body.GetString("status")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorRejected, err)
	}

	if status != StatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, id, status)
	}

	return &CaptureResult{Reference: id, Status: status}, nil
}

func (p *stripeProcessor) Payout(ctx context.Context, req PayoutRequest) error {
	if req.Destination == "" {
		return ErrNoPayoutAccount
	}

	resp, err := p.apiGenerator.New("/v1/transfers").
		Body(api.Parameter{
			"amount":         strconv.FormatInt(req.Amount, 10),
			"currency":       req.Currency,
			"destination":    req.Destination,
			"transfer_group": req.Reference,
		}).
		POST(ctx, api.OAuth2("Bearer", p.secretKey), api.Idempotency("payout-"+req.Reference))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessorUnhealthy, err)
	}

	if !resp.OK() {
		return p.parseError(resp)
	}

	return nil
}

func (p *stripeProcessor) Status(ctx context.Context, reference string) (string, error) {
	resp, err := p.apiGenerator.New("/v1/payment_intents/%s", reference).
		GET(ctx, api.OAuth2("Bearer", p.secretKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcessorUnhealthy, err)
	}

	if resp.Code == http.StatusNotFound {
		return "", ErrNotFound
	}

	if !resp.OK() {
		return "", p.parseError(resp)
	}

	return resp.Body.GetString("status")
}

func (p *stripeProcessor) parseError(resp *api.Response) error {
	msg, err := resp.Body.GetString("error.message")
	if err != nil || msg == "" {
		msg = fmt.Sprintf("status code %d", resp.Code)
	}

	errType, _ := resp.Body.GetString("error.type")
	if errType == "card_error" {
		return fmt.Errorf("%w: %s", ErrDeclined, msg)
	}

	if resp.Code >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", ErrProcessorUnhealthy, msg)
	}

	return fmt.Errorf("%w: %s", ErrProcessorRejected, msg)
}
