package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/addrwatch/internal/infra/rates/mempoolspace"
)

const (
	rateKeyPrefix  = "rates:cache:"
	defaultRateTTL = time.Minute
)

var _ mempoolspace.Cache = (*client)(nil)

func rateKey(currency string) string {
	return rateKeyPrefix + strings.ToUpper(currency)
}

// GetRate returns the cached satoshis-per-unit rate for the currency, or
// mempoolspace.ErrRateNotCached when the entry is missing or expired.
func (c *client) GetRate(ctx context.Context, currency string) (float64, error) {
	rate, err := c.conn.Get(ctx, rateKey(currency)).Float64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, fmt.Errorf("%w: %s", mempoolspace.ErrRateNotCached, currency)
		}
		return 0, err
	}
	return rate, nil
}

// SetRate stores the rate under a TTL'd key so stale prices age out.
func (c *client) SetRate(ctx context.Context, currency string, rate float64) error {
	return c.conn.Set(ctx, rateKey(currency), rate, c.rateTTL).Err()
}
