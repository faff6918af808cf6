package model

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`

	// RewardAmount is given in the smallest unit of the currency. Zero means
	// no reward.
	RewardAmount    int64  `json:"reward_amount"`
	PaymentMethodID string `json:"payment_method_id"`
	IdempotencyKey  string `json:"idempotency_key"`
}

type CreatePostResponse PostView

type GetPostRequest struct {
	PostID string `json:"post_id" form:"post_id"`
}

type GetPostResponse PostView

type DeletePostRequest struct {
	PostID string `json:"post_id"`
}

type DeletePostResponse struct{}

type GetUserPostsRequest struct {
	Handle string `json:"handle" form:"handle"`
}

type GetUserPostsResponse struct {
	Posts []PostView `json:"posts"`
}

type GetTimelineRequest struct{}

type GetTimelineResponse struct {
	Posts []PostView `json:"posts"`
}

type GetRecommendedRequest struct{}

type GetRecommendedResponse struct {
	Posts []PostView `json:"posts"`
}

type ToggleRepostRequest struct {
	PostID string `json:"post_id"`
}

type ToggleRepostResponse struct {
	IsReposted   bool  `json:"is_reposted"`
	RepostsCount int64 `json:"reposts_count"`
}

type UnrepostRequest struct {
	PostID string `json:"post_id"`
}

type UnrepostResponse struct {
	RepostsCount int64 `json:"reposts_count"`
}
