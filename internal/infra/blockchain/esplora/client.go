// Package esplora implements the blockchain lookups against an
// Esplora-compatible HTTP API, such as the one served by mempool.space.
package esplora

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/gabapcia/addrwatch/internal/monitor"
	transporthttp "github.com/gabapcia/addrwatch/internal/pkg/transport/http"
)

// DefaultBaseURL is the public mempool.space Esplora endpoint.
const DefaultBaseURL = "https://mempool.space/api"

// ErrUnexpectedStatus indicates the API answered with a non-2xx status.
var ErrUnexpectedStatus = errors.New("esplora returned an unexpected status")

// addressStats mirrors the per-address aggregate of GET /address/{addr}.
type addressStats struct {
	FundedTxoSum int64 `json:"funded_txo_sum"`
	SpentTxoSum  int64 `json:"spent_txo_sum"`
	TxCount      int64 `json:"tx_count"`
}

type addressResponse struct {
	ChainStats   addressStats `json:"chain_stats"`
	MempoolStats addressStats `json:"mempool_stats"`
}

// balance is the confirmed plus unconfirmed net balance in satoshis.
func (r addressResponse) balance() int64 {
	chain := r.ChainStats.FundedTxoSum - r.ChainStats.SpentTxoSum
	mempool := r.MempoolStats.FundedTxoSum - r.MempoolStats.SpentTxoSum
	return chain + mempool
}

type txStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
	BlockTime   int64 `json:"block_time"`
}

type txPrevout struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

type txVin struct {
	Prevout txPrevout `json:"prevout"`
}

type txVout struct {
	ScriptPubKeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

type txResponse struct {
	TxID   string   `json:"txid"`
	Status txStatus `json:"status"`
	Fee    int64    `json:"fee"`
	Vin    []txVin  `json:"vin"`
	Vout   []txVout `json:"vout"`
}

func (t txResponse) toTransaction() monitor.Transaction {
	tx := monitor.Transaction{
		TxID:        t.TxID,
		Confirmed:   t.Status.Confirmed,
		BlockHeight: t.Status.BlockHeight,
		Fee:         t.Fee,
		Inputs:      make([]monitor.TxInput, 0, len(t.Vin)),
		Outputs:     make([]monitor.TxOutput, 0, len(t.Vout)),
	}
	if t.Status.BlockTime > 0 {
		tx.BlockTime = time.Unix(t.Status.BlockTime, 0).UTC()
	}

	for _, vin := range t.Vin {
		tx.Inputs = append(tx.Inputs, monitor.TxInput{
			Address: vin.Prevout.ScriptPubKeyAddress,
			Value:   vin.Prevout.Value,
		})
	}
	for _, vout := range t.Vout {
		tx.Outputs = append(tx.Outputs, monitor.TxOutput{
			Address: vout.ScriptPubKeyAddress,
			Value:   vout.Value,
		})
	}
	return tx
}

type client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

var _ monitor.BlockchainAPI = (*client)(nil)

// NewClient builds an Esplora client for the given base URL, e.g.
// https://mempool.space/api.
func NewClient(baseURL string, opts ...transporthttp.Option) *client {
	return &client{
		baseURL:    baseURL,
		httpClient: transporthttp.NewClient(opts...),
	}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: GET %s: %s", ErrUnexpectedStatus, path, res.Status)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

func (c *client) GetBalance(ctx context.Context, address string) (int64, error) {
	var res addressResponse
	if err := c.get(ctx, "/address/"+address, &res); err != nil {
		return 0, err
	}
	return res.balance(), nil
}

func (c *client) GetTransactions(ctx context.Context, address string) ([]monitor.Transaction, error) {
	var res []txResponse
	if err := c.get(ctx, "/address/"+address+"/txs", &res); err != nil {
		return nil, err
	}

	txs := make([]monitor.Transaction, 0, len(res))
	for _, tx := range res {
		txs = append(txs, tx.toTransaction())
	}
	return txs, nil
}
