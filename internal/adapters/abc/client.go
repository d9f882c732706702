// Package abc is the client for the source gym-management platform. It
// fetches paginated member and recurring-service record sets, normalizes the
// platform's loosely typed fields, and applies the exclusion and date-window
// filters before anything reaches the sync pipeline.
package abc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/model"
	"github.com/justinhuttinger/abc-to-ghl-api/internal/domain/window"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
	"github.com/justinhuttinger/abc-to-ghl-api/pkg/metrics"

	"github.com/sony/gobreaker/v2"
)

// Default client configuration constants.
const (
	defaultPageSize       = 5000
	defaultPageCap        = 50
	defaultRequestTimeout = 30 * time.Second
	maxErrorBodyBytes     = 4 << 10
)

// Client talks to the source platform's REST API. Authentication is two
// static credential headers; there is no refresh or rotation.
type Client struct {
	baseURL string
	appID   string
	appKey  string

	hc       *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	pageSize int
	pageCap  int
	excluded map[string]struct{}

	logger logger.Logger
}

// New constructs a source client with default configuration.
func New(baseURL, appID, appKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		appID:    appID,
		appKey:   appKey,
		hc:       &http.Client{Timeout: defaultRequestTimeout},
		pageSize: defaultPageSize,
		pageCap:  defaultPageCap,
		excluded: map[string]struct{}{
			"non-member": {},
			"employee":   {},
		},
		logger: logger.Get().Named("abc"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name: "abc-source",
	})

	return c
}

// get performs one authenticated GET and returns the response body. Any
// transport failure, breaker rejection, or non-2xx status maps to
// ErrSourceUnavailable.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("app_id", c.appID)
	req.Header.Set("app_key", c.appKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.hc.Do(req) //nolint:wrapcheck // wrapped by the caller below
	})
	metrics.ObserveSourceRequest(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, snippet)
	}

	return body, nil
}

// pageQuery builds the pagination and server-side filter parameters for one
// page. The window is also sent server-side where supported; the client-side
// post-filter in FetchRecords remains authoritative because filter semantics
// differ per endpoint and field.
func (c *Client) pageQuery(spec kindSpec, win window.Window, page int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(c.pageSize))
	for k, v := range spec.query {
		q.Set(k, v)
	}
	if win.Start != "" {
		q.Set("startDate", win.Start)
	}
	if win.End != "" {
		q.Set("endDate", win.End)
	}
	return q
}

// isExcluded reports whether a record's membership/service type sits in the
// configured exclusion set.
func (c *Client) isExcluded(rec model.SourceRecord) bool {
	for _, t := range []string{rec.MembershipType, rec.ServiceType} {
		if t == "" {
			continue
		}
		if _, ok := c.excluded[normalizeType(t)]; ok {
			return true
		}
	}
	return false
}
