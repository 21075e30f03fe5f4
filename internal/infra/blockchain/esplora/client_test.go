package esplora

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/addrwatch/internal/monitor"
	transporthttp "github.com/gabapcia/addrwatch/internal/pkg/transport/http"
)

const testAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

func newTestClient(serverURL string) *client {
	return NewClient(serverURL,
		transporthttp.WithRetryMax(0),
		transporthttp.WithTimeout(time.Second),
	)
}

func TestGetBalance(t *testing.T) {
	t.Run("should combine chain and mempool stats", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/address/"+testAddress, r.URL.Path)
			w.Write([]byte(`{
				"chain_stats":   {"funded_txo_sum": 500000, "spent_txo_sum": 100000, "tx_count": 4},
				"mempool_stats": {"funded_txo_sum": 25000,  "spent_txo_sum": 5000,   "tx_count": 1}
			}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		balance, err := c.GetBalance(context.Background(), testAddress)

		require.NoError(t, err)
		assert.Equal(t, int64(420_000), balance)
	})

	t.Run("should fail on a non-2xx response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Invalid Bitcoin address", http.StatusBadRequest)
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.GetBalance(context.Background(), testAddress)

		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})
}

func TestGetTransactions(t *testing.T) {
	t.Run("should map the esplora transaction shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/address/"+testAddress+"/txs", r.URL.Path)
			w.Write([]byte(`[
				{
					"txid": "tx-new",
					"status": {"confirmed": false},
					"fee": 210,
					"vin":  [{"prevout": {"scriptpubkey_address": "sender", "value": 100000}}],
					"vout": [{"scriptpubkey_address": "` + testAddress + `", "value": 99790}]
				},
				{
					"txid": "tx-old",
					"status": {"confirmed": true, "block_height": 900000, "block_time": 1700000000},
					"fee": 150,
					"vin":  [{"prevout": {"scriptpubkey_address": "` + testAddress + `", "value": 50000}}],
					"vout": [{"scriptpubkey_address": "receiver", "value": 49850}]
				}
			]`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		txs, err := c.GetTransactions(context.Background(), testAddress)

		require.NoError(t, err)
		require.Len(t, txs, 2)

		assert.Equal(t, monitor.Transaction{
			TxID:    "tx-new",
			Fee:     210,
			Inputs:  []monitor.TxInput{{Address: "sender", Value: 100_000}},
			Outputs: []monitor.TxOutput{{Address: testAddress, Value: 99_790}},
		}, txs[0])

		assert.Equal(t, monitor.Transaction{
			TxID:        "tx-old",
			Confirmed:   true,
			BlockHeight: 900_000,
			BlockTime:   time.Unix(1_700_000_000, 0).UTC(),
			Fee:         150,
			Inputs:      []monitor.TxInput{{Address: testAddress, Value: 50_000}},
			Outputs:     []monitor.TxOutput{{Address: "receiver", Value: 49_850}},
		}, txs[1])
	})

	t.Run("should return an empty slice for an address with no history", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		txs, err := c.GetTransactions(context.Background(), testAddress)

		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.GetTransactions(context.Background(), testAddress)

		assert.Error(t, err)
	})
}
