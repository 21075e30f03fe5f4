package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gabapcia/addrwatch/internal/bitcoin"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
	"github.com/gabapcia/addrwatch/internal/pkg/types"
)

// registerAddresses makes sure every address has a table entry, fetching
// the balance of the ones seen for the first time. Lookup errors propagate
// so the surrounding retry can re-enter the run from scratch.
func (s *service) registerAddresses(ctx context.Context, addresses []string) error {
	for _, address := range addresses {
		s.mu.Lock()
		_, known := s.addresses[address]
		s.mu.Unlock()
		if known {
			continue
		}

		if _, err := s.AddAddress(ctx, address); err != nil {
			return err
		}
	}
	return nil
}

// seedKnownTransactions initializes the known-transaction set of each
// address from its most recent txids, so transactions that existed before
// monitoring started never fire the callback. Per-address seed failures are
// logged and leave the set empty.
func (s *service) seedKnownTransactions(ctx context.Context, addresses []string) error {
	for _, address := range addresses {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		txs, err := s.blockchain.GetTransactions(ctx, address)
		if err != nil {
			logger.Warn(ctx, "seeding known transactions failed, starting with an empty set",
				"address", address,
				"error", err,
			)
			s.setKnownTxIDs(address, types.NewSet[string]())
			continue
		}

		if len(txs) > recentTxLimit {
			txs = txs[:recentTxLimit]
		}
		seed := types.NewSet[string]()
		for _, tx := range txs {
			seed.Add(tx.TxID)
		}
		s.setKnownTxIDs(address, seed)

		logger.Info(ctx, "seeded known transactions",
			"address", address,
			"count", seed.Len(),
		)
	}
	return nil
}

func (s *service) knownTxIDs(address string) types.Set[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownTxs.Get(address)
}

func (s *service) setKnownTxIDs(address string, ids types.Set[string]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.knownTxs.Set(address, ids)
}

// checkAddress fetches the address's transactions, diffs them against the
// known set and invokes the callback with the new ones, newest first. The
// known set is replaced with the current one afterwards.
func (s *service) checkAddress(ctx context.Context, address string, callback TransactionCallback) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	txs, err := s.blockchain.GetTransactions(ctx, address)
	if err != nil {
		return fmt.Errorf("fetching transactions for %s: %w", address, err)
	}

	current := types.NewSet[string]()
	for _, tx := range txs {
		current.Add(tx.TxID)
	}

	known := s.knownTxIDs(address)
	newTxs := make([]Transaction, 0)
	for _, tx := range txs {
		if !known.Contains(tx.TxID) {
			newTxs = append(newTxs, tx)
		}
	}

	if len(newTxs) > 0 {
		logger.Info(ctx, "new transactions detected",
			"address", address,
			"count", len(newTxs),
		)
		if err := callback(ctx, address, newTxs); err != nil {
			logger.Error(ctx, "transaction callback failed",
				"address", address,
				"error", err,
			)
		}
	}

	s.setKnownTxIDs(address, current)
	return nil
}

// runCycles registers and seeds the addresses, then polls them in the
// supplied order until ctx is done. Per-address check failures are logged
// and skipped; only context cancellation ends the loop cleanly.
func (s *service) runCycles(ctx context.Context, addresses []string, interval time.Duration, callback TransactionCallback) error {
	if err := s.registerAddresses(ctx, addresses); err != nil {
		return err
	}
	if err := s.seedKnownTransactions(ctx, addresses); err != nil {
		return err
	}

	for {
		cycleCtx := logger.Derive(ctx, "cycle.id", uuid.Must(uuid.NewV7()).String())
		logger.Debug(cycleCtx, "starting poll cycle", "addresses", len(addresses))

		for _, address := range addresses {
			if err := ctx.Err(); err != nil {
				return err
			}

			if err := s.checkAddress(cycleCtx, address, callback); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Error(cycleCtx, "address check failed, skipping until next cycle",
					"address", address,
					"error", err,
				)
			}
		}

		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (s *service) MonitorAddresses(ctx context.Context, addresses []string, interval time.Duration, callback TransactionCallback) error {
	for _, address := range addresses {
		if !bitcoin.IsValidAddress(address) {
			return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
		}
	}

	err := s.retrier.Execute(ctx, func() error {
		return s.runCycles(ctx, addresses, interval, callback)
	})
	if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		logger.Info(ctx, "monitoring stopped", "addresses", len(addresses))
		return nil
	}

	return fmt.Errorf("monitoring aborted: %w", err)
}

func (s *service) MonitorContinuously(ctx context.Context, interval time.Duration, callback TransactionCallback) error {
	addresses := s.sortedAddresses()
	if len(addresses) == 0 {
		return ErrNoAddresses
	}

	return s.MonitorAddresses(ctx, addresses, interval, callback)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
