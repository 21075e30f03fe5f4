// Package mempoolspace fetches fiat exchange rates from the mempool.space
// price API, optionally backed by a cache so repeated lookups do not hit
// the network.
package mempoolspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
	"github.com/gabapcia/addrwatch/internal/pkg/resilience/ratelimit"
	transporthttp "github.com/gabapcia/addrwatch/internal/pkg/transport/http"
)

// DefaultBaseURL is the public mempool.space API endpoint.
const DefaultBaseURL = "https://mempool.space/api"

const satoshisPerBTC = 1e8

var (
	// ErrCurrencyNotSupported indicates the price feed does not quote the
	// requested currency.
	ErrCurrencyNotSupported = errors.New("currency not supported by the price feed")

	// ErrRateNotCached is returned by Cache implementations when the
	// currency has no cached rate.
	ErrRateNotCached = errors.New("exchange rate not cached")

	// ErrUnexpectedStatus indicates the API answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("price feed returned an unexpected status")
)

// Cache stores recently fetched rates. GetRate returns ErrRateNotCached
// when the currency has no fresh entry.
type Cache interface {
	GetRate(ctx context.Context, currency string) (float64, error)
	SetRate(ctx context.Context, currency string, rate float64) error
}

type client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	cache      Cache
	limiter    ratelimit.Limiter
}

var _ monitor.RateSource = (*client)(nil)

type config struct {
	cache         Cache
	limiter       ratelimit.Limiter
	transportOpts []transporthttp.Option
}

// Option configures the client created by NewClient.
type Option func(*config)

// WithCache interposes a rate cache in front of the network fetch.
func WithCache(cache Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithRateLimiter paces network fetches on a shared request clock. Cache
// hits bypass the limiter.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// WithTransportOptions forwards options to the underlying HTTP client.
func WithTransportOptions(opts ...transporthttp.Option) Option {
	return func(c *config) {
		c.transportOpts = opts
	}
}

// NewClient builds a rate source for the given base URL, e.g.
// https://mempool.space/api.
func NewClient(baseURL string, opts ...Option) *client {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		baseURL:    baseURL,
		httpClient: transporthttp.NewClient(cfg.transportOpts...),
		cache:      cfg.cache,
		limiter:    cfg.limiter,
	}
}

// SatoshisPerUnit returns how many satoshis one unit of currency buys. A
// quote of zero or below yields a zero rate, which consumers treat as a
// degraded fiat value.
func (c *client) SatoshisPerUnit(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(currency)

	if c.cache != nil {
		rate, err := c.cache.GetRate(ctx, currency)
		switch {
		case err == nil:
			return rate, nil
		case !errors.Is(err, ErrRateNotCached):
			logger.Warn(ctx, "rate cache lookup failed, falling back to the price feed",
				"currency", currency,
				"error", err,
			)
		}
	}

	price, err := c.fetchPrice(ctx, currency)
	if err != nil {
		return 0, err
	}

	var rate float64
	if price > 0 {
		rate = satoshisPerBTC / price
	}

	if c.cache != nil {
		if err := c.cache.SetRate(ctx, currency, rate); err != nil {
			logger.Warn(ctx, "storing exchange rate in the cache failed",
				"currency", currency,
				"error", err,
			)
		}
	}

	return rate, nil
}

// fetchPrice retrieves the fiat price of one bitcoin from GET /v1/prices.
func (c *client) fetchPrice(ctx context.Context, currency string) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/prices", nil)
	if err != nil {
		return 0, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
	}

	var prices map[string]float64
	if err := json.NewDecoder(res.Body).Decode(&prices); err != nil {
		return 0, err
	}

	price, ok := prices[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCurrencyNotSupported, currency)
	}
	return price, nil
}
