package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/model"
	"github.com/tensaku-lab/backend/pkg/authenticator"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

func Test_AuthVerifier_Middleware(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	engine := authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.AccessToken)

	token, err := engine.Generate(testutil.User1.ID, model.AccessToken{ID: testutil.User1.ID, Handle: "alice"})
	require.NoError(t, err)

	required := NewAuthVerifier(engine).Middleware()
	optional := NewAuthVerifier(engine).WithOptional().Middleware()

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		next, err := required(xcontext.WithHTTPRequest(ctx, req))
		require.NoError(t, err)
		require.Equal(t, testutil.User1.ID, xcontext.RequestUserID(next))
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.AddCookie(&http.Cookie{Name: cfg.Auth.AccessToken.Name, Value: token})

		next, err := required(xcontext.WithHTTPRequest(ctx, req))
		require.NoError(t, err)
		require.Equal(t, testutil.User1.ID, xcontext.RequestUserID(next))
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)

		_, err := required(xcontext.WithHTTPRequest(ctx, req))
		require.True(t, errorx.Is(err, errorx.Unauthenticated))

		next, err := optional(xcontext.WithHTTPRequest(ctx, req))
		require.NoError(t, err)
		require.Empty(t, xcontext.RequestUserID(next))
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		_, err := required(xcontext.WithHTTPRequest(ctx, req))
		require.True(t, errorx.Is(err, errorx.Unauthenticated))

		_, err = optional(xcontext.WithHTTPRequest(ctx, req))
		require.True(t, errorx.Is(err, errorx.Unauthenticated))
	})
}
