package monitor

import "context"

// RateSource converts between Bitcoin and a fiat currency.
type RateSource interface {
	// SatoshisPerUnit returns how many satoshis one unit of the fiat
	// currency buys at the current market price.
	SatoshisPerUnit(ctx context.Context, currency string) (float64, error)
}

// fiatValue converts a satoshi balance using a satoshis-per-unit rate.
// Non-positive rates yield zero, matching the degraded fiat behavior of
// GetAddressInfo.
func fiatValue(balanceSatoshis int64, satoshisPerUnit float64) float64 {
	if satoshisPerUnit <= 0 {
		return 0
	}
	return float64(balanceSatoshis) / satoshisPerUnit
}
