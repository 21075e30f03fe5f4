package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
)

const testAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

type monitorServiceMock struct {
	mock.Mock
}

func (m *monitorServiceMock) GetAddressInfo(ctx context.Context, address string, opts ...monitor.InfoOption) (monitor.AddressInfo, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(monitor.AddressInfo), args.Error(1)
}

func (m *monitorServiceMock) GetAddressesInfo(ctx context.Context, addresses []string) (map[string]monitor.AddressInfo, error) {
	args := m.Called(ctx, addresses)
	infos, _ := args.Get(0).(map[string]monitor.AddressInfo)
	return infos, args.Error(1)
}

func (m *monitorServiceMock) AddAddress(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *monitorServiceMock) RemoveAddress(address string) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *monitorServiceMock) ListAddresses() map[string]int64 {
	args := m.Called()
	table, _ := args.Get(0).(map[string]int64)
	return table
}

func (m *monitorServiceMock) GetAddressBalance(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *monitorServiceMock) MonitorAddresses(ctx context.Context, addresses []string, interval time.Duration, callback monitor.TransactionCallback) error {
	args := m.Called(ctx, addresses, interval, callback)
	return args.Error(0)
}

func (m *monitorServiceMock) MonitorContinuously(ctx context.Context, interval time.Duration, callback monitor.TransactionCallback) error {
	args := m.Called(ctx, interval, callback)
	<-ctx.Done()
	return args.Error(0)
}

func newTestServer(svc monitor.Service) *Server {
	return NewServer(svc, nil, ":0", time.Minute, "USD")
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleStatus(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should report the monitoring state and address count", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("ListAddresses").Return(map[string]int64{testAddress: 100})

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/status", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var res statusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "ok", res.Status)
		assert.False(t, res.Monitoring)
		assert.Equal(t, 1, res.Addresses)
	})
}

func TestHandleListAddresses(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should list the monitored addresses with balances", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("ListAddresses").Return(map[string]int64{testAddress: 150_000_000})

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/addresses", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var entries []addressEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, testAddress, entries[0].Address)
		assert.Equal(t, int64(150_000_000), entries[0].BalanceSatoshis)
		assert.InDelta(t, 1.5, entries[0].BalanceBTC, 1e-9)
	})

	t.Run("should return an empty list when nothing is monitored", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("ListAddresses").Return(map[string]int64{})

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/addresses", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestHandleAddAddress(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should register the address and start monitoring", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("AddAddress", mock.Anything, testAddress).Return(int64(42), nil)
		svc.On("ListAddresses").Return(map[string]int64{testAddress: 42})
		svc.On("MonitorContinuously", mock.Anything, time.Minute, mock.Anything).Return(nil).Maybe()

		server := newTestServer(svc)
		defer server.stopMonitoring()

		rec := doRequest(t, server, http.MethodPost, "/addresses", `{"address":"`+testAddress+`"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var entry addressEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
		assert.Equal(t, testAddress, entry.Address)
		assert.Equal(t, int64(42), entry.BalanceSatoshis)
		assert.True(t, server.isMonitoring())
	})

	t.Run("should reject an invalid address with 400", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("AddAddress", mock.Anything, "bogus").Return(int64(0), monitor.ErrInvalidAddress)

		rec := doRequest(t, newTestServer(svc), http.MethodPost, "/addresses", `{"address":"bogus"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject a body without an address", func(t *testing.T) {
		svc := new(monitorServiceMock)

		rec := doRequest(t, newTestServer(svc), http.MethodPost, "/addresses", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "AddAddress", mock.Anything, mock.Anything)
	})

	t.Run("should reject malformed JSON", func(t *testing.T) {
		svc := new(monitorServiceMock)

		rec := doRequest(t, newTestServer(svc), http.MethodPost, "/addresses", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetAddress(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should return fresh address info", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("GetAddressInfo", mock.Anything, testAddress).Return(monitor.AddressInfo{
			Address:         testAddress,
			BalanceSatoshis: 99,
			Currency:        "USD",
		}, nil)

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/addresses/"+testAddress, "")

		require.Equal(t, http.StatusOK, rec.Code)

		var info monitor.AddressInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, int64(99), info.BalanceSatoshis)
	})

	t.Run("should map an invalid address to 400", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("GetAddressInfo", mock.Anything, "bogus").Return(monitor.AddressInfo{}, monitor.ErrInvalidAddress)

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/addresses/bogus", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRemoveAddress(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should remove a monitored address", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("RemoveAddress", testAddress).Return(nil)
		svc.On("ListAddresses").Return(map[string]int64{})

		rec := doRequest(t, newTestServer(svc), http.MethodDelete, "/addresses/"+testAddress, "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("should answer 404 for an unmonitored address", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("RemoveAddress", testAddress).Return(monitor.ErrNotMonitored)

		rec := doRequest(t, newTestServer(svc), http.MethodDelete, "/addresses/"+testAddress, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleConfig(t *testing.T) {
	require.NoError(t, logger.Init("error"))

	t.Run("should expose the current configuration", func(t *testing.T) {
		svc := new(monitorServiceMock)

		rec := doRequest(t, newTestServer(svc), http.MethodGet, "/config", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var res configResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "USD", res.Currency)
		assert.Equal(t, "1m0s", res.PollInterval)
	})

	t.Run("should update the poll interval", func(t *testing.T) {
		svc := new(monitorServiceMock)
		svc.On("ListAddresses").Return(map[string]int64{})

		server := newTestServer(svc)

		rec := doRequest(t, server, http.MethodPost, "/config", `{"poll_interval":"30s"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var res configResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "30s", res.PollInterval)
	})

	t.Run("should reject a non-positive interval", func(t *testing.T) {
		svc := new(monitorServiceMock)

		rec := doRequest(t, newTestServer(svc), http.MethodPost, "/config", `{"poll_interval":"-5s"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should reject an unparseable interval", func(t *testing.T) {
		svc := new(monitorServiceMock)

		rec := doRequest(t, newTestServer(svc), http.MethodPost, "/config", `{"poll_interval":"soon"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
