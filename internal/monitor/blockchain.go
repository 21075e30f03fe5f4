package monitor

import (
	"context"
	"time"
)

// TxInput is a transaction input, resolved to the address and value of the
// output it spends.
type TxInput struct {
	Address string
	Value   int64
}

// TxOutput is a transaction output.
type TxOutput struct {
	Address string
	Value   int64
}

// Transaction is a Bitcoin transaction as reported by the blockchain data
// source. Values are in satoshis. A Transaction is immutable once fetched.
type Transaction struct {
	TxID        string
	Confirmed   bool
	BlockHeight int64
	BlockTime   time.Time
	Fee         int64
	Inputs      []TxInput
	Outputs     []TxOutput
}

// BlockchainAPI defines the blockchain lookups the monitoring engine needs.
//
// Implementations talk to a public data source and are expected to be safe
// for concurrent use. The engine paces calls itself, so implementations do
// not need to rate limit.
type BlockchainAPI interface {
	// GetBalance returns the confirmed plus unconfirmed balance of the
	// address, in satoshis.
	GetBalance(ctx context.Context, address string) (int64, error)

	// GetTransactions returns the transactions involving the address,
	// newest first. The source may cap the result length.
	GetTransactions(ctx context.Context, address string) ([]Transaction, error)
}

// NetAmount computes the satoshi delta the transaction caused for the given
// address: outputs paying the address minus inputs spending from it.
func (t Transaction) NetAmount(address string) int64 {
	var net int64
	for _, out := range t.Outputs {
		if out.Address == address {
			net += out.Value
		}
	}
	for _, in := range t.Inputs {
		if in.Address == address {
			net -= in.Value
		}
	}
	return net
}
