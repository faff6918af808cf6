package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tensaku-lab/backend/config"
	"github.com/tensaku-lab/backend/pkg/logger"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may enrich the context before it is handed to the next
// middleware. Returning an error aborts the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc is always called after the response was written.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine  *gin.Engine
	rootCtx context.Context

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	ctx = xcontext.WithDB(ctx, db)
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Router{engine: engine, rootCtx: ctx}
}

// WithContext lets the caller attach more shared values, for example the
// snowflake node, to every request context.
func (r *Router) WithContext(f func(context.Context) context.Context) *Router {
	r.rootCtx = f(r.rootCtx)
	return r
}

func (r *Router) Branch() *Router {
	clone := &Router{
		engine:  r.engine,
		rootCtx: r.rootCtx,
	}
	clone.befores = append(clone.befores, r.befores...)
	clone.afters = append(clone.afters, r.afters...)
	clone.closers = append(clone.closers, r.closers...)
	return clone
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(m MiddlewareFunc) {
	r.afters = append(r.afters, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

// Handle mounts a raw http.Handler, used for endpoints which do not follow
// the json envelope (metrics).
func (r *Router) Handle(method, pattern string, h http.Handler) {
	r.engine.Handle(method, pattern, gin.WrapH(h))
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}
