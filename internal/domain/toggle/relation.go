package toggle

import (
	"context"
	"errors"
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/repository"
	"gorm.io/gorm"
)

func exists[T any](ctx context.Context, get func(context.Context, string) (*T, error), id string) (bool, error) {
	_, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

type repostRelation struct {
	postRepo   repository.PostRepository
	repostRepo repository.RepostRepository
}

// NewRepostRelation relates users to the posts they re-shared. The target key
// is the post id.
func NewRepostRelation(
	postRepo repository.PostRepository, repostRepo repository.RepostRepository,
) *repostRelation {
	return &repostRelation{postRepo: postRepo, repostRepo: repostRepo}
}

func (r *repostRelation) Name() string { return "repost" }

func (r *repostRelation) TargetExists(ctx context.Context, postID string) (bool, error) {
	return exists(ctx, r.postRepo.GetByID, postID)
}

func (r *repostRelation) Exists(ctx context.Context, userID, postID string) (bool, error) {
	return r.repostRepo.Exists(ctx, userID, postID)
}

func (r *repostRelation) Insert(ctx context.Context, userID, postID string) error {
	return r.repostRepo.Create(ctx, &entity.Repost{UserID: userID, PostID: postID, CreatedAt: time.Now()})
}

func (r *repostRelation) Remove(ctx context.Context, userID, postID string) error {
	return r.repostRepo.Delete(ctx, userID, postID)
}

func (r *repostRelation) ApplyCounter(ctx context.Context, postID string, delta int64) error {
	return r.postRepo.IncreaseRepostCount(ctx, postID, delta)
}

type critiqueLikeRelation struct {
	critiqueRepo     repository.CritiqueRepository
	critiqueLikeRepo repository.CritiqueLikeRepository
}

// NewCritiqueLikeRelation relates users to the critiques they liked. The
// target key is the critique id.
func NewCritiqueLikeRelation(
	critiqueRepo repository.CritiqueRepository, critiqueLikeRepo repository.CritiqueLikeRepository,
) *critiqueLikeRelation {
	return &critiqueLikeRelation{critiqueRepo: critiqueRepo, critiqueLikeRepo: critiqueLikeRepo}
}

func (r *critiqueLikeRelation) Name() string { return "critique like" }

func (r *critiqueLikeRelation) TargetExists(ctx context.Context, critiqueID string) (bool, error) {
	return exists(ctx, r.critiqueRepo.GetByID, critiqueID)
}

func (r *critiqueLikeRelation) Exists(ctx context.Context, userID, critiqueID string) (bool, error) {
	return r.critiqueLikeRepo.Exists(ctx, critiqueID, userID)
}

func (r *critiqueLikeRelation) Insert(ctx context.Context, userID, critiqueID string) error {
	return r.critiqueLikeRepo.Create(ctx, &entity.CritiqueLike{
		CritiqueID: critiqueID,
		UserID:     userID,
		CreatedAt:  time.Now(),
	})
}

func (r *critiqueLikeRelation) Remove(ctx context.Context, userID, critiqueID string) error {
	return r.critiqueLikeRepo.Delete(ctx, critiqueID, userID)
}

func (r *critiqueLikeRelation) ApplyCounter(ctx context.Context, critiqueID string, delta int64) error {
	return r.critiqueRepo.IncreaseLikeCount(ctx, critiqueID, delta)
}

type followRelation struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFollowRelation relates followers to followees. The target key is the
// followee id. Follow counts are computed on read, so there is no counter.
func NewFollowRelation(
	userRepo repository.UserRepository, followRepo repository.FollowRepository,
) *followRelation {
	return &followRelation{userRepo: userRepo, followRepo: followRepo}
}

func (r *followRelation) Name() string { return "follow" }

func (r *followRelation) TargetExists(ctx context.Context, userID string) (bool, error) {
	return exists(ctx, r.userRepo.GetByID, userID)
}

func (r *followRelation) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	return r.followRepo.IsFollowing(ctx, followerID, followeeID)
}

func (r *followRelation) Insert(ctx context.Context, followerID, followeeID string) error {
	return r.followRepo.Create(ctx, &entity.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	})
}

func (r *followRelation) Remove(ctx context.Context, followerID, followeeID string) error {
	return r.followRepo.Delete(ctx, followerID, followeeID)
}

func (r *followRelation) ApplyCounter(context.Context, string, int64) error {
	return nil
}
