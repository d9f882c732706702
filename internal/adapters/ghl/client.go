// Package ghl is the client for the target CRM's contact API. It implements
// the upsert.Directory contract: email lookup, contact re-read, create,
// update, and tag-only writes, all scoped by the club's location and token.
package ghl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/metrics"

	"github.com/sony/gobreaker/v2"
)

// Default client configuration constants.
const (
	defaultAPIVersion     = "2021-07-28"
	defaultRequestTimeout = 30 * time.Second
	maxErrorBodyBytes     = 4 << 10
)

// Client talks to the CRM contacts API. Authentication is a per-club bearer
// token plus a fixed API version header.
type Client struct {
	baseURL    string
	apiVersion string

	hc      *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]

	logger logger.Logger
}

// New constructs a target client with default configuration.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiVersion: defaultAPIVersion,
		hc:         &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger.Get().Named("ghl"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name: "ghl-target",
	})

	return c
}

// do performs one authenticated request and returns status plus body.
// Transport failures and breaker rejections map to ErrTargetUnavailable;
// non-2xx statuses are returned to the caller for interpretation, since
// create rejections carry duplicate information in the body.
func (c *Client) do(ctx context.Context, op, method, path, token string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %v", ErrTargetUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.hc.Do(req) //nolint:wrapcheck // wrapped by the caller below
	})
	metrics.ObserveTargetRequest(op, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTargetUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrTargetUnavailable, err)
	}
	if len(raw) > maxErrorBodyBytes && resp.StatusCode >= http.StatusBadRequest {
		raw = raw[:maxErrorBodyBytes]
	}

	return resp.StatusCode, raw, nil
}
