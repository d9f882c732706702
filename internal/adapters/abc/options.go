package abc

import (
	"net/http"
	"strings"

	"github.com/justinhuttinger/abc-to-ghl-api/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithPageSize sets the page size requested from the source API.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithPageCap sets the hard safety cap on pages fetched per call.
func WithPageCap(cap int) Option {
	return func(c *Client) {
		if cap > 0 {
			c.pageCap = cap
		}
	}
}

// WithExcludedTypes sets the membership/service types dropped from results.
// Matching is case-insensitive.
func WithExcludedTypes(types []string) Option {
	return func(c *Client) {
		c.excluded = make(map[string]struct{}, len(types))
		for _, t := range types {
			c.excluded[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
