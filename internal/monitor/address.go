package monitor

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/gabapcia/addrwatch/internal/bitcoin"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
)

// AddressInfo aggregates everything a single lookup learns about an
// address. Err is set instead of returning an error when a lookup fails
// after the address has already been validated.
type AddressInfo struct {
	Address            string        `json:"address"`
	BalanceSatoshis    int64         `json:"balance_satoshis"`
	BalanceBTC         float64       `json:"balance_btc"`
	BalanceFiat        float64       `json:"balance_fiat"`
	Currency           string        `json:"currency"`
	TransactionCount   int           `json:"transaction_count"`
	RecentTransactions []Transaction `json:"recent_transactions,omitempty"`
	Err                string        `json:"error,omitempty"`
}

// ProgressFunc receives partial AddressInfo snapshots as a lookup
// progresses: after the balance, after the fiat conversion and after the
// transaction list.
type ProgressFunc func(AddressInfo)

type infoConfig struct {
	progress ProgressFunc
}

// InfoOption configures a single GetAddressInfo call.
type InfoOption func(*infoConfig)

// WithProgress registers a callback receiving ordered partial snapshots of
// the lookup.
func WithProgress(fn ProgressFunc) InfoOption {
	return func(c *infoConfig) {
		c.progress = fn
	}
}

func (s *service) GetAddressInfo(ctx context.Context, address string, opts ...InfoOption) (AddressInfo, error) {
	if !bitcoin.IsValidAddress(address) {
		return AddressInfo{}, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	var cfg infoConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	emit := func(info AddressInfo) {
		if cfg.progress != nil {
			cfg.progress(info)
		}
	}

	info := AddressInfo{
		Address:  address,
		Currency: s.currency,
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return info, err
	}
	balance, err := s.blockchain.GetBalance(ctx, address)
	if err != nil {
		info.Err = err.Error()
		return info, nil
	}
	info.BalanceSatoshis = balance
	info.BalanceBTC = float64(balance) / satoshisPerBTC
	emit(info)

	rate, err := s.rates.SatoshisPerUnit(ctx, s.currency)
	if err != nil {
		logger.Warn(ctx, "exchange rate lookup failed, fiat value degraded to zero",
			"address", address,
			"currency", s.currency,
			"error", err,
		)
		rate = 0
	}
	info.BalanceFiat = fiatValue(balance, rate)
	emit(info)

	if err := s.limiter.Wait(ctx); err != nil {
		return info, err
	}
	txs, err := s.blockchain.GetTransactions(ctx, address)
	if err != nil {
		info.Err = err.Error()
		return info, nil
	}
	info.TransactionCount = len(txs)
	if len(txs) > recentTxLimit {
		txs = txs[:recentTxLimit]
	}
	info.RecentTransactions = txs
	emit(info)

	return info, nil
}

func (s *service) GetAddressesInfo(ctx context.Context, addresses []string) (map[string]AddressInfo, error) {
	infos := make(map[string]AddressInfo, len(addresses))
	for _, address := range addresses {
		info, err := s.GetAddressInfo(ctx, address)
		if err != nil {
			return nil, err
		}
		infos[address] = info
	}
	return infos, nil
}

func (s *service) AddAddress(ctx context.Context, address string) (int64, error) {
	if !bitcoin.IsValidAddress(address) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	balance, err := s.blockchain.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("fetching balance for %s: %w", address, err)
	}

	s.mu.Lock()
	s.addresses[address] = balance
	s.mu.Unlock()

	return balance, nil
}

func (s *service) RemoveAddress(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.addresses[address]; !ok {
		return fmt.Errorf("%w: %s", ErrNotMonitored, address)
	}

	delete(s.addresses, address)
	s.knownTxs.Delete(address)
	return nil
}

func (s *service) ListAddresses() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.addresses)
}

func (s *service) GetAddressBalance(ctx context.Context, address string) (int64, error) {
	s.mu.Lock()
	_, monitored := s.addresses[address]
	s.mu.Unlock()
	if !monitored {
		return 0, fmt.Errorf("%w: %s", ErrNotMonitored, address)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	balance, err := s.blockchain.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("fetching balance for %s: %w", address, err)
	}

	s.mu.Lock()
	s.addresses[address] = balance
	s.mu.Unlock()

	return balance, nil
}

// sortedAddresses returns the registered addresses in a stable order.
func (s *service) sortedAddresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := make([]string, 0, len(s.addresses))
	for address := range s.addresses {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	return addresses
}
