package middleware

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/router"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter keeps one token bucket per user, or per remote ip for
// anonymous requests.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	visitors *xsync.MapOf[string, *visitor]
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		visitors: xsync.NewMapOf[*visitor](),
	}
}

func (rl *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if rl.limit <= 0 {
			return ctx, nil
		}

		key := visitorKey(ctx)
		now := time.Now()
		v, _ := rl.visitors.Compute(key, func(old *visitor, loaded bool) (*visitor, bool) {
			if !loaded {
				old = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
			}
			old.lastSeen.Store(now.UnixNano())
			return old, false
		})

		if !v.limiter.AllowN(now, 1) {
			xcontext.Logger(ctx).Debugf("Rate limit exceeded for %s", key)
			return nil, errorx.New(errorx.TooManyRequests, "Too many requests, please slow down")
		}

		return ctx, nil
	}
}

// Cleanup forgets visitors idle for longer than ttl.
func (rl *RateLimiter) Cleanup(ttl time.Duration) {
	deadline := time.Now().Add(-ttl).UnixNano()
	rl.visitors.Range(func(key string, v *visitor) bool {
		if v.lastSeen.Load() < deadline {
			rl.visitors.Delete(key)
		}
		return true
	})
}

func visitorKey(ctx context.Context) string {
	if userID := xcontext.RequestUserID(ctx); userID != "" {
		return "user:" + userID
	}

	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "ip:" + req.RemoteAddr
	}
	return "ip:" + host
}
