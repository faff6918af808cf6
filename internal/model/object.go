package model

// AccessToken is the object signed into access tokens.
type AccessToken struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

type ShortUser struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

type User struct {
	ShortUser
	Bio           string `json:"bio"`
	PayoutAccount string `json:"payout_account,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type Reward struct {
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	PaymentReference string `json:"payment_reference,omitempty"`
	BestCritiqueID   string `json:"best_critique_id,omitempty"`
	Settled          bool   `json:"settled"`
}

type Critique struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	Author     ShortUser `json:"author"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	LikesCount int64     `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
	IsBest     bool      `json:"is_best"`
	CreatedAt  string    `json:"created_at"`
}

// PostView is a post as seen by one viewer.
type PostView struct {
	ID        string    `json:"id"`
	Author    ShortUser `json:"author"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt string    `json:"created_at"`
	Reward    Reward    `json:"reward"`

	// DisplayAt is the time the post is ranked by in a feed. It is the time
	// of the latest repost when the post reached the feed through a repost.
	DisplayAt  string     `json:"display_at,omitempty"`
	RepostedBy *ShortUser `json:"reposted_by,omitempty"`

	RepostsCount    int64     `json:"reposts_count"`
	CritiquesCount  int64     `json:"critiques_count"`
	IsReposted      bool      `json:"is_reposted"`
	CritiquePreview *Critique `json:"critique_preview"`
}

type Payment struct {
	PaymentReference string `json:"payment_reference"`
	ProcessorStatus  string `json:"processor_status,omitempty"`
	PostID           string `json:"post_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	Settled          bool   `json:"settled"`
	Recorded         bool   `json:"recorded"`
	CreatedAt        string `json:"created_at"`
}
