package api

import (
	"net/http"
)

type oauth2Opt struct {
	token string
}

func OAuth2(prefix, token string) *oauth2Opt {
	return &oauth2Opt{token: prefix + " " + token}
}

func (opt *oauth2Opt) Do(client defaultClient, req *http.Request) {
	req.Header.Set("Authorization", opt.token)
}

type idempotencyOpt struct {
	key string
}

// Idempotency sets the Idempotency-Key header, so a retried request is
// executed at most once by the remote side.
func Idempotency(key string) *idempotencyOpt {
	return &idempotencyOpt{key: key}
}

func (opt *idempotencyOpt) Do(client defaultClient, req *http.Request) {
	if opt.key != "" {
		req.Header.Set("Idempotency-Key", opt.key)
	}
}
