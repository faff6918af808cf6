package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tensaku-lab/backend/internal/domain/escrow"
	"github.com/tensaku-lab/backend/internal/domain/feed"
	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PostDomain interface {
	Create(context.Context, *model.CreatePostRequest) (*model.CreatePostResponse, error)
	Get(context.Context, *model.GetPostRequest) (*model.GetPostResponse, error)
	Delete(context.Context, *model.DeletePostRequest) (*model.DeletePostResponse, error)
	GetByUser(context.Context, *model.GetUserPostsRequest) (*model.GetUserPostsResponse, error)
	GetTimeline(context.Context, *model.GetTimelineRequest) (*model.GetTimelineResponse, error)
	GetRecommended(context.Context, *model.GetRecommendedRequest) (*model.GetRecommendedResponse, error)
	ToggleRepost(context.Context, *model.ToggleRepostRequest) (*model.ToggleRepostResponse, error)
	Unrepost(context.Context, *model.UnrepostRequest) (*model.UnrepostResponse, error)
}

type postDomain struct {
	postRepo         repository.PostRepository
	repostRepo       repository.RepostRepository
	critiqueRepo     repository.CritiqueRepository
	critiqueLikeRepo repository.CritiqueLikeRepository
	userRepo         repository.UserRepository
	composer         *feed.Composer
	escrowManager    *escrow.Manager
	toggleEngine     *toggle.Engine
	repostRelation   toggle.Relation
}

func NewPostDomain(
	postRepo repository.PostRepository,
	repostRepo repository.RepostRepository,
	critiqueRepo repository.CritiqueRepository,
	critiqueLikeRepo repository.CritiqueLikeRepository,
	userRepo repository.UserRepository,
	composer *feed.Composer,
	escrowManager *escrow.Manager,
	toggleEngine *toggle.Engine,
) *postDomain {
	return &postDomain{
		postRepo:         postRepo,
		repostRepo:       repostRepo,
		critiqueRepo:     critiqueRepo,
		critiqueLikeRepo: critiqueLikeRepo,
		userRepo:         userRepo,
		composer:         composer,
		escrowManager:    escrowManager,
		toggleEngine:     toggleEngine,
		repostRelation:   toggle.NewRepostRelation(postRepo, repostRepo),
	}
}

func (d *postDomain) Create(
	ctx context.Context, req *model.CreatePostRequest,
) (*model.CreatePostResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	content, err := validateContent("content", req.Content, xcontext.Configs(ctx).Post.MaxContentLength)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		Base:     entity.Base{ID: uuid.NewString()},
		AuthorID: userID,
		Content:  content,
		ImageURL: nullString(req.ImageURL),
	}

	err = d.escrowManager.CreatePost(ctx, post, escrow.RewardRequest{
		Amount:         req.RewardAmount,
		MethodToken:    req.PaymentMethodID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	view, err := d.view(ctx, userID, post)
	if err != nil {
		return nil, err
	}

	resp := model.CreatePostResponse(*view)
	return &resp, nil
}

func (d *postDomain) Get(ctx context.Context, req *model.GetPostRequest) (*model.GetPostResponse, error) {
	post, err := getPost(ctx, d.postRepo, req.PostID)
	if err != nil {
		return nil, err
	}

	view, err := d.view(ctx, xcontext.RequestUserID(ctx), post)
	if err != nil {
		return nil, err
	}

	resp := model.GetPostResponse(*view)
	return &resp, nil
}

func (d *postDomain) view(ctx context.Context, viewerID string, post *entity.Post) (*model.PostView, error) {
	views, err := d.composer.Annotate(
		ctx,
		viewerID,
		map[string]entity.Post{post.ID: *post},
		feed.FromPosts([]entity.Post{*post}),
		false,
	)
	if err != nil {
		return nil, err
	}

	if len(views) != 1 {
		xcontext.Logger(ctx).Errorf("Invalid number of views of post %s: %d", post.ID, len(views))
		return nil, errorx.Unknown
	}

	return &views[0], nil
}

func (d *postDomain) Delete(ctx context.Context, req *model.DeletePostRequest) (*model.DeletePostResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := getPost(ctx, d.postRepo, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the author can delete the post")
	}

	if post.RewardStatus == entity.RewardCaptured || post.RewardStatus == entity.RewardBestChosen {
		return nil, errorx.New(errorx.Conflict, "Cannot delete a post whose reward is not settled")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.postRepo.ClearBestCritique(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear best critique of post: %v", err)
		return nil, errorx.Unknown
	}

	critiqueIDs, err := d.critiqueRepo.GetIDsByPostID(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get critiques of post: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.critiqueLikeRepo.DeleteByCritiqueIDs(ctx, critiqueIDs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete critique likes: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.critiqueRepo.DeleteByPostID(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete critiques: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.repostRepo.DeleteByPostID(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete reposts: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.postRepo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete post: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit post deletion: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeletePostResponse{}, nil
}

func (d *postDomain) GetByUser(
	ctx context.Context, req *model.GetUserPostsRequest,
) (*model.GetUserPostsResponse, error) {
	user, err := getUserByHandle(ctx, d.userRepo, req.Handle)
	if err != nil {
		return nil, err
	}

	scope := repository.AuthorScope{AuthorIDs: []string{user.ID}}
	posts, err := d.postRepo.GetLatest(ctx, scope, xcontext.Configs(ctx).Feed.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get posts of user: %v", err)
		return nil, errorx.Unknown
	}

	byID := map[string]entity.Post{}
	for _, p := range posts {
		byID[p.ID] = p
	}

	views, err := d.composer.Annotate(ctx, xcontext.RequestUserID(ctx), byID, feed.FromPosts(posts), false)
	if err != nil {
		return nil, err
	}

	return &model.GetUserPostsResponse{Posts: views}, nil
}

func (d *postDomain) GetTimeline(
	ctx context.Context, req *model.GetTimelineRequest,
) (*model.GetTimelineResponse, error) {
	views, err := d.composer.Timeline(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetTimelineResponse{Posts: views}, nil
}

func (d *postDomain) GetRecommended(
	ctx context.Context, req *model.GetRecommendedRequest,
) (*model.GetRecommendedResponse, error) {
	views, err := d.composer.Recommended(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetRecommendedResponse{Posts: views}, nil
}

func (d *postDomain) ToggleRepost(
	ctx context.Context, req *model.ToggleRepostRequest,
) (*model.ToggleRepostResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := d.toggleEngine.Toggle(ctx, d.repostRelation, userID, req.PostID)
	if err != nil {
		return nil, err
	}

	count, err := d.repostCount(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	return &model.ToggleRepostResponse{IsReposted: result.Active, RepostsCount: count}, nil
}

func (d *postDomain) Unrepost(ctx context.Context, req *model.UnrepostRequest) (*model.UnrepostResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := d.toggleEngine.Set(ctx, d.repostRelation, userID, req.PostID, false)
	if err != nil {
		return nil, err
	}

	if result.CounterDelta == 0 {
		return nil, errorx.New(errorx.NotFound, "You have not reposted this post")
	}

	count, err := d.repostCount(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	return &model.UnrepostResponse{RepostsCount: count}, nil
}

func (d *postDomain) repostCount(ctx context.Context, postID string) (int64, error) {
	post, err := getPost(ctx, d.postRepo, postID)
	if err != nil {
		return 0, err
	}

	return post.RepostCount, nil
}
