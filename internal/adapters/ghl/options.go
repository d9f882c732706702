package ghl

import (
	"net/http"

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

// WithAPIVersion sets the fixed API version header value.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
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
