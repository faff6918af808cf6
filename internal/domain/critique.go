package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CritiqueDomain interface {
	Create(context.Context, *model.CreateCritiqueRequest) (*model.CreateCritiqueResponse, error)
	GetByPost(context.Context, *model.GetCritiquesRequest) (*model.GetCritiquesResponse, error)
	Delete(context.Context, *model.DeleteCritiqueRequest) (*model.DeleteCritiqueResponse, error)
	ToggleLike(context.Context, *model.ToggleCritiqueLikeRequest) (*model.ToggleCritiqueLikeResponse, error)
}

type critiqueDomain struct {
	postRepo         repository.PostRepository
	critiqueRepo     repository.CritiqueRepository
	critiqueLikeRepo repository.CritiqueLikeRepository
	userRepo         repository.UserRepository
	toggleEngine     *toggle.Engine
	likeRelation     toggle.Relation
}

func NewCritiqueDomain(
	postRepo repository.PostRepository,
	critiqueRepo repository.CritiqueRepository,
	critiqueLikeRepo repository.CritiqueLikeRepository,
	userRepo repository.UserRepository,
	toggleEngine *toggle.Engine,
) *critiqueDomain {
	return &critiqueDomain{
		postRepo:         postRepo,
		critiqueRepo:     critiqueRepo,
		critiqueLikeRepo: critiqueLikeRepo,
		userRepo:         userRepo,
		toggleEngine:     toggleEngine,
		likeRelation:     toggle.NewCritiqueLikeRelation(critiqueRepo, critiqueLikeRepo),
	}
}

func (d *critiqueDomain) Create(
	ctx context.Context, req *model.CreateCritiqueRequest,
) (*model.CreateCritiqueResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	content, err := validateContent("critique", req.Content, xcontext.Configs(ctx).Post.MaxCritiqueLength)
	if err != nil {
		return nil, err
	}

	post, err := getPost(ctx, d.postRepo, req.PostID)
	if err != nil {
		return nil, err
	}

	critique := &entity.Critique{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		AuthorID: userID,
		Content:  content,
		ImageURL: nullString(req.ImageURL),
	}

	if err := d.critiqueRepo.Create(ctx, critique); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create critique: %v", err)
		return nil, errorx.Unknown
	}

	author, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get critique author: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.CreateCritiqueResponse(model.ConvertCritique(critique, model.ConvertShortUser(author)))
	return &resp, nil
}

func (d *critiqueDomain) GetByPost(
	ctx context.Context, req *model.GetCritiquesRequest,
) (*model.GetCritiquesResponse, error) {
	post, err := getPost(ctx, d.postRepo, req.PostID)
	if err != nil {
		return nil, err
	}

	critiques, err := d.critiqueRepo.GetByPostID(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get critiques: %v", err)
		return nil, errorx.Unknown
	}

	critiqueIDs := []string{}
	authorIDs := []string{}
	for _, c := range critiques {
		critiqueIDs = append(critiqueIDs, c.ID)
		authorIDs = append(authorIDs, c.AuthorID)
	}

	likedIDs, err := d.critiqueLikeRepo.GetLikedCritiqueIDs(ctx, xcontext.RequestUserID(ctx), critiqueIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get liked critiques: %v", err)
		return nil, errorx.Unknown
	}

	liked := map[string]bool{}
	for _, id := range likedIDs {
		liked[id] = true
	}

	authors, err := shortUsers(ctx, d.userRepo, authorIDs)
	if err != nil {
		return nil, err
	}

	authorByID := map[string]model.ShortUser{}
	for _, a := range authors {
		authorByID[a.ID] = a
	}

	result := []model.Critique{}
	for i := range critiques {
		c := model.ConvertCritique(&critiques[i], authorByID[critiques[i].AuthorID])
		c.IsLiked = liked[c.ID]
		c.IsBest = post.BestCritiqueID.Valid && post.BestCritiqueID.String == c.ID
		result = append(result, c)
	}

	return &model.GetCritiquesResponse{Critiques: result}, nil
}

func (d *critiqueDomain) Delete(
	ctx context.Context, req *model.DeleteCritiqueRequest,
) (*model.DeleteCritiqueResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	critique, err := d.critiqueRepo.GetByID(ctx, req.CritiqueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found critique")
		}

		xcontext.Logger(ctx).Errorf("Cannot get critique: %v", err)
		return nil, errorx.Unknown
	}

	if critique.PostID != req.PostID {
		return nil, errorx.New(errorx.NotFound, "Not found critique")
	}

	if critique.AuthorID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Only the author can delete the critique")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.critiqueLikeRepo.DeleteByCritiqueIDs(ctx, []string{critique.ID}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete critique likes: %v", err)
		return nil, errorx.Unknown
	}

	// A best critique chosen after the read above is still protected here.
	if err := d.critiqueRepo.DeleteUnlessBest(ctx, critique.ID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot delete critique: %v", err)
			return nil, errorx.Unknown
		}

		if _, err := d.critiqueRepo.GetByID(ctx, critique.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found critique")
			}

			xcontext.Logger(ctx).Errorf("Cannot get critique: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.Conflict, "Cannot delete the best critique")
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit critique deletion: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeleteCritiqueResponse{}, nil
}

func (d *critiqueDomain) ToggleLike(
	ctx context.Context, req *model.ToggleCritiqueLikeRequest,
) (*model.ToggleCritiqueLikeResponse, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	critique, err := d.critiqueRepo.GetByID(ctx, req.CritiqueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidTarget, "Not found critique")
		}

		xcontext.Logger(ctx).Errorf("Cannot get critique: %v", err)
		return nil, errorx.Unknown
	}

	if critique.AuthorID == userID {
		return nil, errorx.New(errorx.InvalidTarget, "Cannot like your own critique")
	}

	result, err := d.toggleEngine.Toggle(ctx, d.likeRelation, userID, critique.ID)
	if err != nil {
		return nil, err
	}

	critique, err = d.critiqueRepo.GetByID(ctx, critique.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get critique: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ToggleCritiqueLikeResponse{IsLiked: result.Active, LikesCount: critique.LikeCount}, nil
}
