// Package monitor implements the address monitoring engine: lookup
// aggregation, known-transaction state, diff detection and the polling loop
// that drives notifications.
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/addrwatch/internal/pkg/resilience/ratelimit"
	"github.com/gabapcia/addrwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/addrwatch/internal/pkg/types"
)

const (
	// satoshisPerBTC is the number of satoshis in one bitcoin.
	satoshisPerBTC = 1e8

	// recentTxLimit caps how many recent transactions a lookup reports and
	// how many txids seed the known set for an address.
	recentTxLimit = 10

	defaultCurrency     = "USD"
	defaultLoopAttempts = 5
)

var (
	// ErrInvalidAddress is returned before any network call when an
	// address fails validation.
	ErrInvalidAddress = errors.New("invalid bitcoin address")

	// ErrNotMonitored is returned for operations on an address that was
	// never registered (or has been removed).
	ErrNotMonitored = errors.New("address is not monitored")

	// ErrNoAddresses is returned when a monitoring run is requested but
	// no addresses are registered.
	ErrNoAddresses = errors.New("no addresses registered for monitoring")
)

// TransactionCallback is invoked by the polling loop once per address per
// cycle with the transactions that appeared since the previous cycle,
// newest first. Errors are logged and do not stop the loop.
type TransactionCallback func(ctx context.Context, address string, txs []Transaction) error

// Service is the monitoring engine entrypoint.
type Service interface {
	// GetAddressInfo aggregates balance, fiat value and up to 10 recent
	// transactions for the address. Validation failures return
	// ErrInvalidAddress before any lookup; lookup failures after
	// validation are captured in AddressInfo.Err instead of an error.
	GetAddressInfo(ctx context.Context, address string, opts ...InfoOption) (AddressInfo, error)

	// GetAddressesInfo runs GetAddressInfo for each address and returns
	// the results keyed by address.
	GetAddressesInfo(ctx context.Context, addresses []string) (map[string]AddressInfo, error)

	// AddAddress validates and registers an address for monitoring,
	// performing one balance lookup. Lookup errors propagate.
	AddAddress(ctx context.Context, address string) (int64, error)

	// RemoveAddress unregisters an address. Returns ErrNotMonitored if
	// the address was not registered.
	RemoveAddress(address string) error

	// ListAddresses returns a snapshot of the monitored addresses and
	// their last known balances in satoshis.
	ListAddresses() map[string]int64

	// GetAddressBalance re-fetches the balance of a monitored address and
	// updates the stored value. Returns ErrNotMonitored for untracked
	// addresses.
	GetAddressBalance(ctx context.Context, address string) (int64, error)

	// MonitorAddresses polls the given addresses every interval and
	// invokes callback with newly appeared transactions. It validates all
	// addresses before any network call, seeds known-transaction state,
	// then cycles until ctx is canceled, returning nil on cancellation.
	// Transient loop failures are retried with exponential backoff; the
	// final error propagates once attempts are exhausted.
	MonitorAddresses(ctx context.Context, addresses []string, interval time.Duration, callback TransactionCallback) error

	// MonitorContinuously monitors every currently registered address.
	// Returns ErrNoAddresses when the table is empty.
	MonitorContinuously(ctx context.Context, interval time.Duration, callback TransactionCallback) error
}

type service struct {
	blockchain BlockchainAPI
	rates      RateSource
	limiter    ratelimit.Limiter
	retrier    retry.Retry
	currency   string

	// mu guards addresses and knownTxs; the table is shared between the
	// polling loop and the REST front end.
	mu        sync.Mutex
	addresses map[string]int64 // address -> last known balance in satoshis
	knownTxs  types.DefaultMap[string, types.Set[string]]
}

var _ Service = (*service)(nil)

type config struct {
	currency string
	limiter  ratelimit.Limiter
	retrier  retry.Retry
}

// Option configures the service created by New.
type Option func(*config)

// New builds the monitoring engine on top of a blockchain data source and a
// fiat rate source.
//
// Defaults: USD fiat currency, a rate limiter with 10s spacing, and a
// 5-attempt exponential backoff around the polling loop.
func New(blockchain BlockchainAPI, rates RateSource, opts ...Option) *service {
	cfg := config{
		currency: defaultCurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.limiter == nil {
		cfg.limiter = ratelimit.New()
	}
	if cfg.retrier == nil {
		cfg.retrier = retry.New(retry.WithAttempts(defaultLoopAttempts))
	}

	return &service{
		blockchain: blockchain,
		rates:      rates,
		limiter:    cfg.limiter,
		retrier:    cfg.retrier,
		currency:   cfg.currency,
		addresses:  make(map[string]int64),
		knownTxs: types.NewDefaultMap[string](func() types.Set[string] {
			return types.NewSet[string]()
		}),
	}
}

// WithCurrency sets the fiat currency used for balance conversion.
func WithCurrency(currency string) Option {
	return func(c *config) {
		c.currency = currency
	}
}

// WithRateLimiter sets the limiter pacing all blockchain lookups.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(c *config) {
		c.limiter = l
	}
}

// WithRetry sets the retry policy wrapped around the polling loop.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retrier = r
	}
}
