package feed_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/domain/feed"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/testutil"
)

func newComposer() *feed.Composer {
	return feed.NewComposer(
		repository.NewUserRepository(),
		repository.NewFollowRepository(),
		repository.NewPostRepository(),
		repository.NewRepostRepository(),
		repository.NewCritiqueRepository(),
	)
}

func viewIDs(views []model.PostView) []string {
	ids := []string{}
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func Test_Composer_Timeline_FollowAndUnfollow(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	composer := newComposer()

	views, err := composer.Timeline(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post2.ID, testutil.Post1.ID}, viewIDs(views))
	require.Equal(t, "hello", views[1].Content)
	require.Equal(t, "bob", views[1].Author.Handle)

	err = repository.NewFollowRepository().Delete(ctx, testutil.User1.ID, testutil.User2.ID)
	require.NoError(t, err)

	views, err = composer.Timeline(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post2.ID}, viewIDs(views))
}

func Test_Composer_Timeline_WithoutFollowees(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	views, err := newComposer().Timeline(ctx, testutil.User4.ID)
	require.NoError(t, err)
	require.Empty(t, views)

	views, err = newComposer().Timeline(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post1.ID}, viewIDs(views))
}

func Test_Composer_Timeline_RepostOrdersByRepostTime(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	repostAt := testutil.FixtureTime().Add(10 * time.Hour)
	err := repository.NewRepostRepository().Create(ctx, &entity.Repost{
		UserID:    testutil.User3.ID,
		PostID:    testutil.Post1.ID,
		CreatedAt: repostAt,
	})
	require.NoError(t, err)

	// carol follows bob and reposts his post, so it qualifies twice.
	views, err := newComposer().Timeline(ctx, testutil.User3.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post1.ID, testutil.Post3.ID}, viewIDs(views))
	displayAt, err := time.Parse(model.DefaultTimeLayout, views[0].DisplayAt)
	require.NoError(t, err)
	require.True(t, repostAt.Equal(displayAt))
	require.NotNil(t, views[0].RepostedBy)
	require.Equal(t, "carol", views[0].RepostedBy.Handle)
	require.True(t, views[0].IsReposted)
	require.False(t, views[1].IsReposted)

	// dave follows carol only, and sees bob's post through her repost.
	err = repository.NewFollowRepository().Create(ctx, &entity.Follow{
		FollowerID: testutil.User4.ID,
		FolloweeID: testutil.User3.ID,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	views, err = newComposer().Timeline(ctx, testutil.User4.ID)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post1.ID, testutil.Post3.ID}, viewIDs(views))
	require.False(t, views[0].IsReposted)
}

func Test_Composer_Timeline_Unauthenticated(t *testing.T) {
	ctx := testutil.MockContext()

	_, err := newComposer().Timeline(ctx, "")
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_Composer_Recommended_Anonymous(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	err := repository.NewRepostRepository().Create(ctx, &entity.Repost{
		UserID:    testutil.User4.ID,
		PostID:    testutil.Post2.ID,
		CreatedAt: testutil.FixtureTime().Add(time.Minute),
	})
	require.NoError(t, err)

	views, err := newComposer().Recommended(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{testutil.Post3.ID, testutil.Post2.ID, testutil.Post1.ID}, viewIDs(views))

	for _, v := range views {
		require.False(t, v.IsReposted)
	}

	// post3 has no critique.
	require.Nil(t, views[0].CritiquePreview)
	require.Equal(t, int64(0), views[0].CritiquesCount)

	require.Equal(t, int64(3), views[1].CritiquesCount)
	require.NotNil(t, views[1].CritiquePreview)
	require.Equal(t, testutil.Critique1.ID, views[1].CritiquePreview.ID)
	require.Equal(t, "bob", views[1].CritiquePreview.Author.Handle)
	require.Equal(t, int64(1000), views[1].Reward.Amount)

	require.Equal(t, testutil.Critique4.ID, views[2].CritiquePreview.ID)
}

func Test_Composer_Recommended_Limit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertUsers(ctx)

	postRepo := repository.NewPostRepository()
	for i := 0; i < 60; i++ {
		err := postRepo.Create(ctx, &entity.Post{
			Base: entity.Base{
				ID:        fmt.Sprintf("p%02d", i),
				CreatedAt: testutil.FixtureTime().Add(time.Duration(i) * time.Minute),
			},
			AuthorID:     testutil.User1.ID,
			Content:      "post",
			RewardStatus: entity.RewardNone,
		})
		require.NoError(t, err)
	}

	views, err := newComposer().Recommended(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Len(t, views, 50)
	require.Equal(t, "p59", views[0].ID)
}
