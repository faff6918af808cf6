package router

import (
	"errors"
	"net/http"

	"github.com/tensaku-lab/backend/pkg/errorx"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

// HTTPStatus maps an error to the status code written with the json envelope.
func HTTPStatus(err error) int {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		return http.StatusInternalServerError
	}

	switch errx.Code {
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.NotImplemented:
		return http.StatusNotImplemented
	}

	switch errx.Kind() {
	case errorx.KindValidation:
		return http.StatusBadRequest
	case errorx.KindAuthorization:
		return http.StatusForbidden
	case errorx.KindConflict:
		return http.StatusConflict
	case errorx.KindExternal:
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
