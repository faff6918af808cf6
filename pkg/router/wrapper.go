package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/tensaku-lab/backend/pkg/errorx"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type (
	responseKey struct{}
	errorKey    struct{}
)

func GetResponse(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

func GetError(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := router.rootCtx
		ctx = xcontext.WithHTTPRequest(ctx, c.Request)
		ctx = xcontext.WithStartTime(ctx, time.Now())

		defer func() {
			for _, closer := range router.closers {
				closer(ctx)
			}
		}()

		for _, before := range router.befores {
			next, err := before(ctx)
			if err != nil {
				ctx = context.WithValue(ctx, errorKey{}, err)
				writeError(ctx, c, err)
				return
			}
			ctx = next
		}

		req := new(Request)
		if err := bind(c, method, req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
			err = errorx.New(errorx.BadRequest, "Invalid request")
			ctx = context.WithValue(ctx, errorKey{}, err)
			writeError(ctx, c, err)
			return
		}

		resp, err := handler(ctx, req)
		if err != nil {
			ctx = context.WithValue(ctx, errorKey{}, err)
			writeError(ctx, c, err)
			return
		}
		ctx = context.WithValue(ctx, responseKey{}, resp)

		for _, after := range router.afters {
			next, err := after(ctx)
			if err != nil {
				ctx = context.WithValue(ctx, errorKey{}, err)
				writeError(ctx, c, err)
				return
			}
			ctx = next
		}

		c.JSON(http.StatusOK, newResponse(resp))
	}
}

func bind(c *gin.Context, method string, req any) error {
	if method == http.MethodGet {
		return c.ShouldBindQuery(req)
	}

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		return nil
	}

	if c.Request.ContentLength == 0 {
		return nil
	}

	return c.ShouldBindWith(req, binding.JSON)
}

func writeError(ctx context.Context, c *gin.Context, err error) {
	resp := newErrorResponse(err)
	if resp.Code == int64(errorx.Unknown.Code) {
		xcontext.Logger(ctx).Debugf("Unknown error: %v", err)
	}

	c.AbortWithStatusJSON(HTTPStatus(err), resp)
}
