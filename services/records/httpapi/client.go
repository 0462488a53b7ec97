// Package httpapi is the REST client of the Records API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

// Client talks JSON to the Records API. Every payload it returns went through
// the record package's normalization.
type Client struct {
	base       string
	healthPath string
	http       *http.Client
	token      func() string
}

var (
	_ record.API   = (*Client)(nil)
	_ user.AuthAPI = (*Client)(nil)
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the source of the bearer token sent with every request.
func WithToken(token func() string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds every request; zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithHealthPath(path string) Option {
	return func(c *Client) { c.healthPath = path }
}

func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		healthPath: "/health",
		http:       &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client for core.APIBaseURL, honoring healthPath and requestTimeout.
func NewFromConfig(opts ...Option) *Client {
	base := []Option{
		WithHealthPath(core.HealthPath()),
		WithTimeout(core.Conf.GetDuration("requestTimeout")),
	}
	return New(core.APIBaseURL(), append(base, opts...)...)
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

// do sends a JSON request and returns the decoded JSON reply, or the raw text
// when the reply is not JSON. Non-2xx replies become *record.APIError.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, token ...string) (interface{}, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	bearer := ""
	if len(token) > 0 {
		bearer = token[0]
	} else if c.token != nil {
		bearer = c.token()
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s reply", method, path)
	}
	var decoded interface{} = string(raw)
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") && len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, errors.Wrapf(err, "decoding %s %s reply", method, path)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &record.APIError{Status: resp.StatusCode, Body: decoded}
	}
	return decoded, nil
}

func (c *Client) get(ctx context.Context, path string) (interface{}, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Health never fails: transport and HTTP errors are reported in the status.
func (c *Client) Health(ctx context.Context) record.HealthStatus {
	data, err := c.get(ctx, c.healthPath)
	if err != nil {
		msg := "health check failed"
		if apiErr, ok := errors.Cause(err).(*record.APIError); ok {
			if m := apiErr.Message(); m != "" {
				msg = m
			} else {
				msg = apiErr.Error()
			}
		} else if err.Error() != "" {
			msg = err.Error()
		}
		return record.HealthStatus{OK: false, Error: msg}
	}
	return record.HealthStatus{OK: true, Data: data}
}

// object returns v as a Raw object, an empty one when v is anything else.
func object(v interface{}) record.Raw {
	if obj, ok := v.(map[string]interface{}); ok {
		return obj
	}
	return record.Raw{}
}

// array unwraps list replies, accepting a bare array or one wrapped in
// {"items": [...]} or {"data": [...]}.
func array(v interface{}) interface{} {
	if obj, ok := v.(map[string]interface{}); ok {
		for _, k := range []string{"items", "data", "results"} {
			if arr, ok := obj[k].([]interface{}); ok {
				return arr
			}
		}
	}
	return v
}
