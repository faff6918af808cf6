package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"

	"github.com/tensaku-lab/backend/pkg/xcontext"
)

type Client interface {
	Header(name, value string) Client
	Query(query Parameter) Client
	Body(body Body) Client
	POST(ctx context.Context, opts ...Opt) (*Response, error)
	GET(ctx context.Context, opts ...Opt) (*Response, error)
}

type Generator interface {
	New(path string, args ...any) Client
}

type defaultGenerator struct {
	httpClient *http.Client
	domains    []string
}

func NewGenerator(httpClient *http.Client, domains ...string) *defaultGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &defaultGenerator{httpClient: httpClient, domains: domains}
}

func (g *defaultGenerator) New(path string, args ...any) Client {
	return &defaultClient{
		httpClient: g.httpClient,
		domains:    g.domains,
		path:       fmt.Sprintf(path, args...),
		headers:    make(http.Header),
	}
}

type Body interface {
	ToReader() (io.Reader, string, error)
}

type Opt interface {
	Do(defaultClient, *http.Request)
}

type defaultClient struct {
	httpClient *http.Client
	domains    []string
	method     string
	path       string
	headers    http.Header
	query      Parameter
	body       Body
}

func (c *defaultClient) Header(name, value string) Client {
	c.headers.Set(name, value)
	return c
}

func (c *defaultClient) Query(query Parameter) Client {
	c.query = query
	return c
}

func (c *defaultClient) Body(body Body) Client {
	c.body = body
	return c
}

func (c *defaultClient) POST(ctx context.Context, opts ...Opt) (*Response, error) {
	c.method = http.MethodPost
	return c.call(ctx, opts...)
}

func (c *defaultClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	c.method = http.MethodGet
	return c.call(ctx, opts...)
}

// call tries every domain in a random order and returns the first response
// which could be read. Non-2xx responses are returned as is.
func (c *defaultClient) call(ctx context.Context, opts ...Opt) (*Response, error) {
	var payload string
	var contentType string
	if c.body != nil {
		reader, ct, err := c.body.ToReader()
		if err != nil {
			return nil, err
		}

		b, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		payload, contentType = string(b), ct
	}

	for _, index := range rand.Perm(len(c.domains)) {
		url := strings.TrimRight(c.domains[index], "/") + c.path
		if c.query != nil {
			url = url + "?" + c.query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, c.method, url, strings.NewReader(payload))
		if err != nil {
			return nil, err
		}

		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for h, values := range c.headers {
			for _, v := range values {
				req.Header.Add(h, v)
			}
		}

		for _, opt := range opts {
			opt.Do(*c, req)
		}

		result, err := c.httpClient.Do(req)
		if err != nil {
			xcontext.Logger(ctx).Warnf("An error occurred when calling to %s: %v", url, err)
			continue
		}

		body, err := io.ReadAll(result.Body)
		result.Body.Close()
		if err != nil {
			xcontext.Logger(ctx).Warnf("An error occurred when reading body of %s: %v", url, err)
			continue
		}

		response := &Response{Code: result.StatusCode, Header: result.Header, RawBody: body}
		if len(body) == 0 {
			response.Body = JSON{}
		} else if response.Body, err = bytesToJSON(body); err != nil {
			xcontext.Logger(ctx).Warnf("An error occurred when parsing body of %s: %v", url, err)
			continue
		}

		return response, nil
	}

	return nil, errors.New("all endpoints got errors")
}
