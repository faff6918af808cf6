package model

type ToggleFollowRequest struct {
	Handle string `json:"handle"`
}

type ToggleFollowResponse struct {
	IsFollowing bool `json:"is_following"`
}

type FollowRequest struct {
	Handle string `json:"handle"`
}

type FollowResponse struct{}

type UnfollowRequest struct {
	Handle string `json:"handle"`
}

type UnfollowResponse struct{}

type GetFollowersRequest struct {
	Handle string `json:"handle" form:"handle"`
}

type GetFollowersResponse struct {
	Users []ShortUser `json:"users"`
	Count int64       `json:"count"`
}

type GetFollowingsRequest struct {
	Handle string `json:"handle" form:"handle"`
}

type GetFollowingsResponse struct {
	Users []ShortUser `json:"users"`
	Count int64       `json:"count"`
}

type GetFollowStatusRequest struct {
	Handle string `json:"handle" form:"handle"`
}

type GetFollowStatusResponse struct {
	IsFollowing     bool  `json:"is_following"`
	FollowersCount  int64 `json:"followers_count"`
	FollowingsCount int64 `json:"followings_count"`
}
