package feed

import (
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Item references a post which qualifies for a feed.
type Item struct {
	PostID    string
	DisplayAt time.Time

	// RepostedBy is the user whose repost brought the post into the feed. It
	// is empty when the post qualifies by its author.
	RepostedBy string
}

func FromPosts(posts []entity.Post) []Item {
	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, Item{PostID: p.ID, DisplayAt: p.CreatedAt})
	}
	return items
}

func FromReposts(reposts []entity.Repost) []Item {
	items := make([]Item, 0, len(reposts))
	for _, r := range reposts {
		items = append(items, Item{PostID: r.PostID, DisplayAt: r.CreatedAt, RepostedBy: r.UserID})
	}
	return items
}

// Compose merges the streams into one feed. A post appears at most once and
// is ranked by its latest display time. Items are sorted from newest to
// oldest; ties are broken by post id descending. A non-positive limit keeps
// every item.
func Compose(limit int, streams ...[]Item) []Item {
	latest := map[string]Item{}
	for _, stream := range streams {
		for _, item := range stream {
			current, ok := latest[item.PostID]
			if !ok || newer(item, current) {
				latest[item.PostID] = item
			}
		}
	}

	items := maps.Values(latest)
	slices.SortFunc(items, func(a, b Item) bool {
		if !a.DisplayAt.Equal(b.DisplayAt) {
			return a.DisplayAt.After(b.DisplayAt)
		}
		return a.PostID > b.PostID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items
}

// newer decides which of two items of the same post represents it. On equal
// display times the direct item wins, then the smallest reposter id.
func newer(a, b Item) bool {
	if !a.DisplayAt.Equal(b.DisplayAt) {
		return a.DisplayAt.After(b.DisplayAt)
	}

	if a.RepostedBy == "" || b.RepostedBy == "" {
		return a.RepostedBy == "" && b.RepostedBy != ""
	}

	return a.RepostedBy < b.RepostedBy
}
