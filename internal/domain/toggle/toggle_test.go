package toggle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/domain/toggle"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"gorm.io/gorm"
)

func newRepostRelation() toggle.Relation {
	return toggle.NewRepostRelation(repository.NewPostRepository(), repository.NewRepostRepository())
}

func Test_Engine_Toggle_TwiceIsNoop(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := toggle.NewEngine()
	rel := newRepostRelation()

	first, err := engine.Toggle(ctx, rel, testutil.User1.ID, testutil.Post1.ID)
	require.NoError(t, err)
	require.Equal(t, &toggle.Result{Active: true, CounterDelta: 1}, first)

	post, err := repository.NewPostRepository().GetByID(ctx, testutil.Post1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), post.RepostCount)

	second, err := engine.Toggle(ctx, rel, testutil.User1.ID, testutil.Post1.ID)
	require.NoError(t, err)
	require.Equal(t, &toggle.Result{Active: false, CounterDelta: -1}, second)
	require.Equal(t, int64(0), first.CounterDelta+second.CounterDelta)

	post, err = repository.NewPostRepository().GetByID(ctx, testutil.Post1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), post.RepostCount)

	reposted, err := repository.NewRepostRepository().Exists(ctx, testutil.User1.ID, testutil.Post1.ID)
	require.NoError(t, err)
	require.False(t, reposted)
}

func Test_Engine_Toggle_InvalidTarget(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := toggle.NewEngine()

	_, err := engine.Toggle(ctx, newRepostRelation(), testutil.User1.ID, "unknown")
	require.True(t, errorx.Is(err, errorx.InvalidTarget))

	like := toggle.NewCritiqueLikeRelation(
		repository.NewCritiqueRepository(), repository.NewCritiqueLikeRepository())
	_, err = engine.Toggle(ctx, like, testutil.User1.ID, "unknown")
	require.True(t, errorx.Is(err, errorx.InvalidTarget))

	follow := toggle.NewFollowRelation(repository.NewUserRepository(), repository.NewFollowRepository())
	_, err = engine.Toggle(ctx, follow, testutil.User1.ID, "unknown")
	require.True(t, errorx.Is(err, errorx.InvalidTarget))
}

func Test_Engine_Toggle_Unauthenticated(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	_, err := toggle.NewEngine().Toggle(ctx, newRepostRelation(), "", testutil.Post1.ID)
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_Engine_Toggle_CritiqueLikeCounter(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := toggle.NewEngine()
	critiqueRepo := repository.NewCritiqueRepository()
	like := toggle.NewCritiqueLikeRelation(critiqueRepo, repository.NewCritiqueLikeRepository())

	for _, userID := range []string{testutil.User1.ID, testutil.User3.ID, testutil.User4.ID} {
		result, err := engine.Toggle(ctx, like, userID, testutil.Critique1.ID)
		require.NoError(t, err)
		require.True(t, result.Active)
	}

	critique, err := critiqueRepo.GetByID(ctx, testutil.Critique1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), critique.LikeCount)
}

func Test_Engine_Set(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := toggle.NewEngine()
	follow := toggle.NewFollowRelation(repository.NewUserRepository(), repository.NewFollowRepository())

	// user1 already follows user2 in the fixture.
	result, err := engine.Set(ctx, follow, testutil.User1.ID, testutil.User2.ID, true)
	require.NoError(t, err)
	require.Equal(t, &toggle.Result{Active: true, CounterDelta: 0}, result)

	result, err = engine.Set(ctx, follow, testutil.User1.ID, testutil.User2.ID, false)
	require.NoError(t, err)
	require.Equal(t, &toggle.Result{Active: false, CounterDelta: -1}, result)

	result, err = engine.Set(ctx, follow, testutil.User1.ID, testutil.User2.ID, false)
	require.NoError(t, err)
	require.Equal(t, &toggle.Result{Active: false, CounterDelta: 0}, result)
}

func Test_Engine_Toggle_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	engine := toggle.NewEngine()
	rel := newRepostRelation()

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Toggle(ctx, rel, testutil.User4.ID, testutil.Post3.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// An even number of toggles leaves no repost and a zero counter.
	reposted, err := repository.NewRepostRepository().Exists(ctx, testutil.User4.ID, testutil.Post3.ID)
	require.NoError(t, err)
	require.False(t, reposted)

	post, err := repository.NewPostRepository().GetByID(ctx, testutil.Post3.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), post.RepostCount)
}

type racingRelation struct {
	inserts int
	removes int
}

func (r *racingRelation) Name() string { return "racing" }

func (r *racingRelation) TargetExists(context.Context, string) (bool, error) { return true, nil }

func (r *racingRelation) Exists(context.Context, string, string) (bool, error) { return false, nil }

func (r *racingRelation) Insert(context.Context, string, string) error {
	r.inserts++
	return gorm.ErrDuplicatedKey
}

func (r *racingRelation) Remove(context.Context, string, string) error {
	r.removes++
	return nil
}

func (r *racingRelation) ApplyCounter(context.Context, string, int64) error { return nil }

func Test_Engine_Toggle_RetryExhausted(t *testing.T) {
	rel := &racingRelation{}

	_, err := toggle.NewEngine().Toggle(context.Background(), rel, "actor", "target")
	require.True(t, errorx.Is(err, errorx.Conflict))
	require.Equal(t, 3, rel.inserts)
	require.Zero(t, rel.removes)
}
