package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/entity"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return t0.Add(time.Duration(hours) * time.Hour)
}

func postIDs(items []Item) []string {
	ids := []string{}
	for _, item := range items {
		ids = append(ids, item.PostID)
	}
	return ids
}

func Test_Compose_RepostBumpsPost(t *testing.T) {
	posts := []entity.Post{
		{Base: entity.Base{ID: "hello", CreatedAt: at(1)}},
		{Base: entity.Base{ID: "other", CreatedAt: at(2)}},
	}
	reposts := []entity.Repost{
		{UserID: "carol", PostID: "hello", CreatedAt: at(3)},
	}

	items := Compose(50, FromPosts(posts), FromReposts(reposts))
	require.Equal(t, []string{"hello", "other"}, postIDs(items))
	require.Equal(t, at(3), items[0].DisplayAt)
	require.Equal(t, "carol", items[0].RepostedBy)
}

func Test_Compose_KeepsLatestReference(t *testing.T) {
	posts := []entity.Post{{Base: entity.Base{ID: "p", CreatedAt: at(5)}}}
	reposts := []entity.Repost{
		{UserID: "u1", PostID: "p", CreatedAt: at(2)},
		{UserID: "u2", PostID: "p", CreatedAt: at(7)},
		{UserID: "u3", PostID: "p", CreatedAt: at(4)},
	}

	items := Compose(50, FromPosts(posts), FromReposts(reposts))
	require.Len(t, items, 1)
	require.Equal(t, at(7), items[0].DisplayAt)
	require.Equal(t, "u2", items[0].RepostedBy)

	// The direct post is the latest reference.
	items = Compose(50, FromReposts(reposts[:1]), FromPosts(posts))
	require.Len(t, items, 1)
	require.Equal(t, at(5), items[0].DisplayAt)
	require.Empty(t, items[0].RepostedBy)
}

func Test_Compose_TieBreak(t *testing.T) {
	posts := []entity.Post{
		{Base: entity.Base{ID: "a", CreatedAt: at(1)}},
		{Base: entity.Base{ID: "b", CreatedAt: at(1)}},
	}
	reposts := []entity.Repost{
		{UserID: "z", PostID: "a", CreatedAt: at(1)},
		{UserID: "y", PostID: "b", CreatedAt: at(1)},
		{UserID: "x", PostID: "b", CreatedAt: at(1)},
	}

	items := Compose(50, FromReposts(reposts), FromPosts(posts))
	require.Equal(t, []string{"b", "a"}, postIDs(items))
	require.Empty(t, items[0].RepostedBy)
	require.Empty(t, items[1].RepostedBy)

	items = Compose(50, FromReposts(reposts))
	require.Equal(t, "x", items[0].RepostedBy)
}

func Test_Compose_Limit(t *testing.T) {
	posts := []entity.Post{}
	for i := 0; i < 80; i++ {
		posts = append(posts, entity.Post{Base: entity.Base{ID: fmt.Sprintf("p%02d", i), CreatedAt: at(i)}})
	}

	items := Compose(50, FromPosts(posts))
	require.Len(t, items, 50)
	require.Equal(t, "p79", items[0].PostID)
	require.Equal(t, "p30", items[49].PostID)

	require.Len(t, Compose(0, FromPosts(posts)), 80)
}

func Test_Compose_Empty(t *testing.T) {
	require.Empty(t, Compose(50))
	require.Empty(t, Compose(50, nil, nil))
}
