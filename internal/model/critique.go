package model

type CreateCritiqueRequest struct {
	PostID   string `json:"post_id"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type CreateCritiqueResponse Critique

type GetCritiquesRequest struct {
	PostID string `json:"post_id" form:"post_id"`
}

type GetCritiquesResponse struct {
	Critiques []Critique `json:"critiques"`
}

type DeleteCritiqueRequest struct {
	PostID     string `json:"post_id"`
	CritiqueID string `json:"critique_id"`
}

type DeleteCritiqueResponse struct{}

type ToggleCritiqueLikeRequest struct {
	CritiqueID string `json:"critique_id"`
}

type ToggleCritiqueLikeResponse struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}
