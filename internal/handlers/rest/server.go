// Package rest exposes the monitoring engine over a small JSON HTTP API.
// All state lives on the Server value so handlers never reach for globals.
package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/notify"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Server holds everything the HTTP handlers need: the monitoring engine,
// the notification sink and the state of the background polling loop.
type Server struct {
	monitor  monitor.Service
	notifier notify.Notifier

	listenAddr string

	mu            sync.Mutex
	pollInterval  time.Duration
	currency      string
	monitoring    bool
	cancelMonitor context.CancelFunc
}

// NewServer builds a REST server around the monitoring engine. The notifier
// receives alerts from the background loop the server manages.
func NewServer(svc monitor.Service, notifier notify.Notifier, listenAddr string, pollInterval time.Duration, currency string) *Server {
	return &Server{
		monitor:      svc,
		notifier:     notifier,
		listenAddr:   listenAddr,
		pollInterval: pollInterval,
		currency:     currency,
	}
}

// Router wires every endpoint. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/addresses", s.handleListAddresses).Methods(http.MethodGet)
	r.HandleFunc("/addresses", s.handleAddAddress).Methods(http.MethodPost)
	r.HandleFunc("/addresses/{address}", s.handleGetAddress).Methods(http.MethodGet)
	r.HandleFunc("/addresses/{address}", s.handleRemoveAddress).Methods(http.MethodDelete)
	r.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleUpdateConfig).Methods(http.MethodPost)
	return r
}

// ListenAndServe runs the HTTP server until ctx is done, then drains it
// gracefully and stops the background monitoring loop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "rest server listening", "addr", s.listenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.stopMonitoring()
		return err
	case <-ctx.Done():
	}

	s.stopMonitoring()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ensureMonitoring (re)starts the background polling loop over the current
// address table. Called after every table change so new addresses are
// picked up.
func (s *Server) ensureMonitoring(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelMonitor != nil {
		s.cancelMonitor()
	}

	if len(s.monitor.ListAddresses()) == 0 {
		s.monitoring = false
		s.cancelMonitor = nil
		return
	}

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelMonitor = cancel
	s.monitoring = true
	interval := s.pollInterval

	go func() {
		if err := s.monitor.MonitorContinuously(monitorCtx, interval, notify.Callback(s.notifier)); err != nil {
			logger.Error(monitorCtx, "background monitoring stopped", "error", err)
		}

		s.mu.Lock()
		// A canceled context means the loop was replaced or stopped on
		// purpose; leave the state to whoever did that.
		if monitorCtx.Err() == nil {
			s.monitoring = false
			s.cancelMonitor = nil
		}
		s.mu.Unlock()
	}()
}

func (s *Server) stopMonitoring() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelMonitor != nil {
		s.cancelMonitor()
		s.cancelMonitor = nil
	}
	s.monitoring = false
}

func (s *Server) isMonitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitoring
}
