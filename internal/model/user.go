package model

type GetUserRequest struct {
	Handle string `json:"handle" form:"handle"`
}

type GetUserResponse User

type GetMeRequest struct{}

type GetMeResponse User

type UpdatePayoutAccountRequest struct {
	PayoutAccount string `json:"payout_account"`
}

type UpdatePayoutAccountResponse struct{}
