package domain

import (
	"context"

	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type FollowDomain interface {
	Toggle(context.Context, *model.ToggleFollowRequest) (*model.ToggleFollowResponse, error)
	Follow(context.Context, *model.FollowRequest) (*model.FollowResponse, error)
	Unfollow(context.Context, *model.UnfollowRequest) (*model.UnfollowResponse, error)
	GetFollowers(context.Context, *model.GetFollowersRequest) (*model.GetFollowersResponse, error)
	GetFollowings(context.Context, *model.GetFollowingsRequest) (*model.GetFollowingsResponse, error)
	GetStatus(context.Context, *model.GetFollowStatusRequest) (*model.GetFollowStatusResponse, error)
}

type followDomain struct {
	followRepo     repository.FollowRepository
	userRepo       repository.UserRepository
	toggleEngine   *toggle.Engine
	followRelation toggle.Relation
}

func NewFollowDomain(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	toggleEngine *toggle.Engine,
) *followDomain {
	return &followDomain{
		followRepo:     followRepo,
		userRepo:       userRepo,
		toggleEngine:   toggleEngine,
		followRelation: toggle.NewFollowRelation(userRepo, followRepo),
	}
}

// target resolves the followee of a follow change. A missing or self target
// is an InvalidTarget.
func (d *followDomain) target(ctx context.Context, handle string) (string, *entity.User, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return "", nil, err
	}

	followee, err := getUserByHandle(ctx, d.userRepo, handle)
	if err != nil {
		if errorx.Is(err, errorx.NotFound) {
			return "", nil, errorx.New(errorx.InvalidTarget, "Not found user")
		}
		return "", nil, err
	}

	if followee.ID == userID {
		return "", nil, errorx.New(errorx.InvalidTarget, "Cannot follow yourself")
	}

	return userID, followee, nil
}

func (d *followDomain) Toggle(
	ctx context.Context, req *model.ToggleFollowRequest,
) (*model.ToggleFollowResponse, error) {
	userID, followee, err := d.target(ctx, req.Handle)
	if err != nil {
		return nil, err
	}

	result, err := d.toggleEngine.Toggle(ctx, d.followRelation, userID, followee.ID)
	if err != nil {
		return nil, err
	}

	return &model.ToggleFollowResponse{IsFollowing: result.Active}, nil
}

func (d *followDomain) Follow(ctx context.Context, req *model.FollowRequest) (*model.FollowResponse, error) {
	userID, followee, err := d.target(ctx, req.Handle)
	if err != nil {
		return nil, err
	}

	result, err := d.toggleEngine.Set(ctx, d.followRelation, userID, followee.ID, true)
	if err != nil {
		return nil, err
	}

	if result.CounterDelta == 0 {
		return nil, errorx.New(errorx.AlreadyExists, "You are already following this user")
	}

	return &model.FollowResponse{}, nil
}

func (d *followDomain) Unfollow(ctx context.Context, req *model.UnfollowRequest) (*model.UnfollowResponse, error) {
	userID, followee, err := d.target(ctx, req.Handle)
	if err != nil {
		return nil, err
	}

	result, err := d.toggleEngine.Set(ctx, d.followRelation, userID, followee.ID, false)
	if err != nil {
		return nil, err
	}

	if result.CounterDelta == 0 {
		return nil, errorx.New(errorx.Conflict, "You are not following this user")
	}

	return &model.UnfollowResponse{}, nil
}

func (d *followDomain) GetFollowers(
	ctx context.Context, req *model.GetFollowersRequest,
) (*model.GetFollowersResponse, error) {
	user, err := getUserByHandle(ctx, d.userRepo, req.Handle)
	if err != nil {
		return nil, err
	}

	ids, err := d.followRepo.GetFollowerIDs(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get followers: %v", err)
		return nil, errorx.Unknown
	}

	users, err := shortUsers(ctx, d.userRepo, ids)
	if err != nil {
		return nil, err
	}

	return &model.GetFollowersResponse{Users: users, Count: int64(len(users))}, nil
}

func (d *followDomain) GetFollowings(
	ctx context.Context, req *model.GetFollowingsRequest,
) (*model.GetFollowingsResponse, error) {
	user, err := getUserByHandle(ctx, d.userRepo, req.Handle)
	if err != nil {
		return nil, err
	}

	ids, err := d.followRepo.GetFolloweeIDs(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get followings: %v", err)
		return nil, errorx.Unknown
	}

	users, err := shortUsers(ctx, d.userRepo, ids)
	if err != nil {
		return nil, err
	}

	return &model.GetFollowingsResponse{Users: users, Count: int64(len(users))}, nil
}

func (d *followDomain) GetStatus(
	ctx context.Context, req *model.GetFollowStatusRequest,
) (*model.GetFollowStatusResponse, error) {
	user, err := getUserByHandle(ctx, d.userRepo, req.Handle)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID := xcontext.RequestUserID(ctx); viewerID != "" && viewerID != user.ID {
		isFollowing, err = d.followRepo.IsFollowing(ctx, viewerID, user.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check follow: %v", err)
			return nil, errorx.Unknown
		}
	}

	followers, err := d.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count followers: %v", err)
		return nil, errorx.Unknown
	}

	followings, err := d.followRepo.CountFollowees(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count followings: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetFollowStatusResponse{
		IsFollowing:     isFollowing,
		FollowersCount:  followers,
		FollowingsCount: followings,
	}, nil
}
