package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

func Test_RateLimiter_Middleware(t *testing.T) {
	ctx := testutil.MockContext()

	req := httptest.NewRequest(http.MethodGet, "/getRecommended", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	anonymous := xcontext.WithHTTPRequest(ctx, req)
	user := xcontext.WithRequestUserID(anonymous, testutil.User1.ID)

	limiter := NewRateLimiter(0.001, 2)
	middleware := limiter.Middleware()

	for i := 0; i < 2; i++ {
		_, err := middleware(anonymous)
		require.NoError(t, err)
	}

	_, err := middleware(anonymous)
	require.True(t, errorx.Is(err, errorx.TooManyRequests))

	// Authenticated requests have their own bucket.
	_, err = middleware(user)
	require.NoError(t, err)

	limiter.Cleanup(-time.Second)
	_, err = middleware(anonymous)
	require.NoError(t, err)
}

func Test_RateLimiter_Disabled(t *testing.T) {
	ctx := xcontext.WithHTTPRequest(testutil.MockContext(), httptest.NewRequest(http.MethodGet, "/", nil))

	middleware := NewRateLimiter(0, 0).Middleware()
	for i := 0; i < 10; i++ {
		_, err := middleware(ctx)
		require.NoError(t, err)
	}
}
