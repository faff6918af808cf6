package model

type SelectBestCritiqueRequest struct {
	PostID     string `json:"post_id"`
	CritiqueID string `json:"critique_id"`
}

type SelectBestCritiqueResponse Reward

type SettleRewardRequest struct {
	PostID string `json:"post_id"`
}

type SettleRewardResponse Reward

type ConfirmPaymentRequest struct {
	PaymentReference string `json:"payment_reference" form:"payment_reference"`
}

type ConfirmPaymentResponse Payment

type GetPaymentHistoryRequest struct{}

type GetPaymentHistoryResponse struct {
	Payments []Payment `json:"payments"`
}
