package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/repository"
)

var (
	fixtureTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Users
	User1 = &entity.User{
		Base:          entity.Base{ID: "user1"},
		Handle:        "alice",
		DisplayName:   "Alice",
		PayoutAccount: sql.NullString{String: "acct_alice", Valid: true},
	}

	User2 = &entity.User{
		Base:          entity.Base{ID: "user2"},
		Handle:        "bob",
		DisplayName:   "Bob",
		PayoutAccount: sql.NullString{String: "acct_bob", Valid: true},
	}

	User3 = &entity.User{
		Base:        entity.Base{ID: "user3"},
		Handle:      "carol",
		DisplayName: "Carol",
	}

	User4 = &entity.User{
		Base:          entity.Base{ID: "user4"},
		Handle:        "dave",
		DisplayName:   "Dave",
		PayoutAccount: sql.NullString{String: "acct_dave", Valid: true},
	}

	Users = []*entity.User{User1, User2, User3, User4}

	// Follows
	Follow1 = &entity.Follow{FollowerID: User1.ID, FolloweeID: User2.ID, CreatedAt: fixtureTime}
	Follow2 = &entity.Follow{FollowerID: User3.ID, FolloweeID: User2.ID, CreatedAt: fixtureTime}

	Follows = []*entity.Follow{Follow1, Follow2}

	// Posts
	Post1 = &entity.Post{
		Base:         entity.Base{ID: "post1", CreatedAt: fixtureTime.Add(time.Hour)},
		AuthorID:     User2.ID,
		Content:      "hello",
		RewardStatus: entity.RewardNone,
	}

	Post2 = &entity.Post{
		Base:             entity.Base{ID: "post2", CreatedAt: fixtureTime.Add(2 * time.Hour)},
		AuthorID:         User1.ID,
		Content:          "please review my drawing",
		RewardAmount:     1000,
		RewardStatus:     entity.RewardCaptured,
		PaymentReference: sql.NullString{String: "pi_fixture_post2", Valid: true},
	}

	Post3 = &entity.Post{
		Base:         entity.Base{ID: "post3", CreatedAt: fixtureTime.Add(3 * time.Hour)},
		AuthorID:     User3.ID,
		Content:      "carol's first post",
		RewardStatus: entity.RewardNone,
	}

	Posts = []*entity.Post{Post1, Post2, Post3}

	// Critiques
	Critique1 = &entity.Critique{
		Base:     entity.Base{ID: "critique1", CreatedAt: fixtureTime.Add(4 * time.Hour)},
		PostID:   Post2.ID,
		AuthorID: User2.ID,
		Content:  "nice lines",
	}

	Critique2 = &entity.Critique{
		Base:     entity.Base{ID: "critique2", CreatedAt: fixtureTime.Add(5 * time.Hour)},
		PostID:   Post2.ID,
		AuthorID: User1.ID,
		Content:  "note to self",
	}

	Critique3 = &entity.Critique{
		Base:     entity.Base{ID: "critique3", CreatedAt: fixtureTime.Add(6 * time.Hour)},
		PostID:   Post2.ID,
		AuthorID: User3.ID,
		Content:  "shading could be softer",
	}

	Critique4 = &entity.Critique{
		Base:     entity.Base{ID: "critique4", CreatedAt: fixtureTime.Add(7 * time.Hour)},
		PostID:   Post1.ID,
		AuthorID: User1.ID,
		Content:  "hello to you too",
	}

	Critiques = []*entity.Critique{Critique1, Critique2, Critique3, Critique4}
)

// FixtureTime returns the time all fixture rows are created around.
func FixtureTime() time.Time {
	return fixtureTime
}

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertFollows(ctx)
	InsertPosts(ctx)
	InsertCritiques(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range Users {
		u := *user
		if err := userRepo.Create(ctx, &u); err != nil {
			panic(err)
		}
	}
}

func InsertFollows(ctx context.Context) {
	followRepo := repository.NewFollowRepository()
	for _, follow := range Follows {
		f := *follow
		if err := followRepo.Create(ctx, &f); err != nil {
			panic(err)
		}
	}
}

func InsertPosts(ctx context.Context) {
	postRepo := repository.NewPostRepository()
	for _, post := range Posts {
		p := *post
		if err := postRepo.Create(ctx, &p); err != nil {
			panic(err)
		}
	}
}

func InsertCritiques(ctx context.Context) {
	critiqueRepo := repository.NewCritiqueRepository()
	for _, critique := range Critiques {
		c := *critique
		if err := critiqueRepo.Create(ctx, &c); err != nil {
			panic(err)
		}
	}
}
