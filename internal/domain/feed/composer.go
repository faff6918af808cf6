package feed

import (
	"context"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type Composer struct {
	userRepo     repository.UserRepository
	followRepo   repository.FollowRepository
	postRepo     repository.PostRepository
	repostRepo   repository.RepostRepository
	critiqueRepo repository.CritiqueRepository
}

func NewComposer(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	repostRepo repository.RepostRepository,
	critiqueRepo repository.CritiqueRepository,
) *Composer {
	return &Composer{
		userRepo:     userRepo,
		followRepo:   followRepo,
		postRepo:     postRepo,
		repostRepo:   repostRepo,
		critiqueRepo: critiqueRepo,
	}
}

// Timeline is the feed of the viewer's followees and the viewer.
func (c *Composer) Timeline(ctx context.Context, viewerID string) ([]model.PostView, error) {
	if viewerID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require authentication")
	}

	followeeIDs, err := c.followRepo.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get followees: %v", err)
		return nil, errorx.Unknown
	}

	scope := repository.AuthorScope{AuthorIDs: append(followeeIDs, viewerID)}
	return c.compose(ctx, viewerID, scope)
}

// Recommended is the feed of everyone. The viewer may be anonymous.
func (c *Composer) Recommended(ctx context.Context, viewerID string) ([]model.PostView, error) {
	return c.compose(ctx, viewerID, repository.AuthorScope{Everyone: true})
}

func (c *Composer) compose(
	ctx context.Context, viewerID string, scope repository.AuthorScope,
) ([]model.PostView, error) {
	cfg := xcontext.Configs(ctx).Feed

	posts, err := c.postRepo.GetLatest(ctx, scope, cfg.Window)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get latest posts: %v", err)
		return nil, errorx.Unknown
	}

	reposts, err := c.repostRepo.GetLatest(ctx, scope, cfg.Window)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get latest reposts: %v", err)
		return nil, errorx.Unknown
	}

	items := Compose(cfg.Limit, FromPosts(posts), FromReposts(reposts))

	loaded := map[string]entity.Post{}
	for _, p := range posts {
		loaded[p.ID] = p
	}

	missingIDs := []string{}
	for _, item := range items {
		if _, ok := loaded[item.PostID]; !ok {
			missingIDs = append(missingIDs, item.PostID)
		}
	}

	reposted, err := c.postRepo.GetByIDs(ctx, missingIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reposted posts: %v", err)
		return nil, errorx.Unknown
	}

	for _, p := range reposted {
		loaded[p.ID] = p
	}

	return c.Annotate(ctx, viewerID, loaded, items, true)
}

// Annotate projects the items into post views, in the order of items. Items
// whose post is not in posts are skipped.
func (c *Composer) Annotate(
	ctx context.Context,
	viewerID string,
	posts map[string]entity.Post,
	items []Item,
	withPreview bool,
) ([]model.PostView, error) {
	postIDs := []string{}
	userIDs := []string{}
	for _, item := range items {
		post, ok := posts[item.PostID]
		if !ok {
			continue
		}

		postIDs = append(postIDs, post.ID)
		userIDs = append(userIDs, post.AuthorID)
		if item.RepostedBy != "" {
			userIDs = append(userIDs, item.RepostedBy)
		}
	}

	if len(postIDs) == 0 {
		return []model.PostView{}, nil
	}

	critiqueCounts, err := c.critiqueRepo.CountByPostIDs(ctx, postIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count critiques: %v", err)
		return nil, errorx.Unknown
	}

	repostedIDs, err := c.repostRepo.GetRepostedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reposted post ids: %v", err)
		return nil, errorx.Unknown
	}

	isReposted := map[string]bool{}
	for _, id := range repostedIDs {
		isReposted[id] = true
	}

	previews := map[string]entity.Critique{}
	if withPreview {
		previews, err = c.critiqueRepo.GetEarliestByPostIDs(ctx, postIDs)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get critique previews: %v", err)
			return nil, errorx.Unknown
		}

		for _, critique := range previews {
			userIDs = append(userIDs, critique.AuthorID)
		}
	}

	users, err := c.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	shortUsers := map[string]model.ShortUser{}
	for i := range users {
		shortUsers[users[i].ID] = model.ConvertShortUser(&users[i])
	}

	views := []model.PostView{}
	for _, item := range items {
		post, ok := posts[item.PostID]
		if !ok {
			continue
		}

		view := model.ConvertPost(&post, shortUsers[post.AuthorID])
		view.DisplayAt = item.DisplayAt.Format(model.DefaultTimeLayout)
		view.CritiquesCount = critiqueCounts[post.ID]
		view.IsReposted = viewerID != "" && isReposted[post.ID]

		if item.RepostedBy != "" {
			reposter := shortUsers[item.RepostedBy]
			view.RepostedBy = &reposter
		}

		if critique, ok := previews[post.ID]; ok {
			preview := model.ConvertCritique(&critique, shortUsers[critique.AuthorID])
			view.CritiquePreview = &preview
		}

		views = append(views, view)
	}

	return views, nil
}
