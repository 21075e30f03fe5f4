// Package http builds retrying HTTP clients on top of HashiCorp's
// retryablehttp, with functional options for timeouts, retry windows and
// the User-Agent header public APIs expect to see.
package http

import (
	nethttp "net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type config struct {
	timeout      time.Duration
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	retryMax     int
	userAgent    string
}

// Option customizes the client returned by NewClient.
type Option func(*config)

// userAgentTransport stamps a fixed User-Agent on every outgoing request.
type userAgentTransport struct {
	base      nethttp.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns a retryablehttp.Client configured with the provided
// options.
//
// Defaults: 5s request timeout, retry waits between 1s and 5s, 2 retries.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      5 * time.Second,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 5 * time.Second,
		retryMax:     2,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax
	if cfg.userAgent != "" {
		client.HTTPClient.Transport = &userAgentTransport{
			base:      client.HTTPClient.Transport,
			userAgent: cfg.userAgent,
		}
	}
	return client
}

// WithTimeout sets the maximum duration for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the minimum delay between retry attempts.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax sets the maximum delay between retry attempts.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets how many times a failed request is retried.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithUserAgent sets the User-Agent header applied to requests that do not
// already carry one.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}
