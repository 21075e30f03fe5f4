package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
	"github.com/gabapcia/addrwatch/internal/pkg/validator"
)

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Status     string `json:"status"`
	Monitoring bool   `json:"monitoring"`
	Addresses  int    `json:"addresses"`
}

type addressEntry struct {
	Address         string  `json:"address"`
	BalanceSatoshis int64   `json:"balance_satoshis"`
	BalanceBTC      float64 `json:"balance_btc"`
}

type addAddressRequest struct {
	Address string `json:"address" validate:"required"`
}

type configResponse struct {
	Currency     string `json:"currency"`
	PollInterval string `json:"poll_interval"`
}

type updateConfigRequest struct {
	PollInterval string `json:"poll_interval" validate:"required"`
}

const satoshisPerBTC = 1e8

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFromErr maps engine sentinels onto HTTP statuses.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, monitor.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, monitor.ErrNotMonitored):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:     "ok",
		Monitoring: s.isMonitoring(),
		Addresses:  len(s.monitor.ListAddresses()),
	})
}

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	table := s.monitor.ListAddresses()

	entries := make([]addressEntry, 0, len(table))
	for address, balance := range table {
		entries = append(entries, addressEntry{
			Address:         address,
			BalanceSatoshis: balance,
			BalanceBTC:      float64(balance) / satoshisPerBTC,
		})
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	var req addAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	balance, err := s.monitor.AddAddress(r.Context(), req.Address)
	if err != nil {
		logger.Error(r.Context(), "adding address failed", "address", req.Address, "error", err)
		writeError(w, statusFromErr(err), err)
		return
	}

	s.ensureMonitoring(r.Context())

	writeJSON(w, http.StatusCreated, addressEntry{
		Address:         req.Address,
		BalanceSatoshis: balance,
		BalanceBTC:      float64(balance) / satoshisPerBTC,
	})
}

func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	info, err := s.monitor.GetAddressInfo(r.Context(), address)
	if err != nil {
		writeError(w, statusFromErr(err), err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRemoveAddress(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	if err := s.monitor.RemoveAddress(address); err != nil {
		writeError(w, statusFromErr(err), err)
		return
	}

	s.ensureMonitoring(r.Context())

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := configResponse{
		Currency:     s.currency,
		PollInterval: s.pollInterval.String(),
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	interval, err := time.ParseDuration(req.PollInterval)
	if err != nil || interval <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("poll_interval must be a positive duration"))
		return
	}

	s.mu.Lock()
	s.pollInterval = interval
	res := configResponse{
		Currency:     s.currency,
		PollInterval: s.pollInterval.String(),
	}
	s.mu.Unlock()

	// Restart the loop so the new interval takes effect.
	s.ensureMonitoring(r.Context())

	writeJSON(w, http.StatusOK, res)
}
