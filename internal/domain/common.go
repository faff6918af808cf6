package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/internal/repository"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func requireUserID(ctx context.Context) (string, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return "", errorx.New(errorx.Unauthenticated, "Require authentication")
	}
	return userID, nil
}

// validateContent trims the text and checks it is neither empty nor longer
// than max runes.
func validateContent(field, content string, max int) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow empty %s", field)
	}

	if utf8.RuneCountInString(content) > max {
		return "", errorx.New(errorx.BadRequest, "The %s must not exceed %d characters", field, max)
	}

	return content, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func getUserByHandle(ctx context.Context, userRepo repository.UserRepository, handle string) (*entity.User, error) {
	if handle == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty handle")
	}

	user, err := userRepo.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user by handle: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

func getPost(ctx context.Context, postRepo repository.PostRepository, postID string) (*entity.Post, error) {
	if postID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty post id")
	}

	post, err := postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
		return nil, errorx.Unknown
	}

	return post, nil
}

// shortUsers loads the users and keeps the order of ids. Unknown ids are
// skipped.
func shortUsers(
	ctx context.Context, userRepo repository.UserRepository, ids []string,
) ([]model.ShortUser, error) {
	users, err := userRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	byID := map[string]*entity.User{}
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	result := []model.ShortUser{}
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			result = append(result, model.ConvertShortUser(u))
		}
	}

	return result, nil
}
