package riot

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/riftbalance/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAPIKey sets the X-Riot-Token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithPlatformURL sets the base URL of platform routed endpoints (league-v4).
func WithPlatformURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.platformURL = u
		}
	}
}

// WithRegionalURL sets the base URL of regional endpoints (account-v1).
func WithRegionalURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.regionalURL = u
		}
	}
}

// WithRateLimit sets the sustained request rate.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetries sets how often a 429 is retried and the initial backoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
