package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("should apply default configuration", func(t *testing.T) {
		client := NewClient()

		assert.Equal(t, 5*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 1*time.Second, client.RetryWaitMin)
		assert.Equal(t, 5*time.Second, client.RetryWaitMax)
		assert.Equal(t, 2, client.RetryMax)
		assert.Nil(t, client.Logger)
	})

	t.Run("should apply custom options", func(t *testing.T) {
		client := NewClient(
			WithTimeout(10*time.Second),
			WithRetryWaitMin(2*time.Second),
			WithRetryWaitMax(20*time.Second),
			WithRetryMax(5),
		)

		assert.Equal(t, 10*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 2*time.Second, client.RetryWaitMin)
		assert.Equal(t, 20*time.Second, client.RetryWaitMax)
		assert.Equal(t, 5, client.RetryMax)
	})

	t.Run("should retry failed requests", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(nethttp.StatusInternalServerError)
				return
			}
			w.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		client := NewClient(
			WithRetryMax(3),
			WithRetryWaitMin(time.Millisecond),
			WithRetryWaitMax(5*time.Millisecond),
		)

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("should stamp the configured user agent on requests", func(t *testing.T) {
		var seen atomic.Value
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			seen.Store(r.Header.Get("User-Agent"))
			w.WriteHeader(nethttp.StatusOK)
		}))
		defer server.Close()

		client := NewClient(WithUserAgent("addrwatch/1.0"))

		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "addrwatch/1.0", seen.Load())
	})
}
