package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthServer serves the worker's health checks and metrics:
//   - /health: liveness, always 200
//   - /health/ready: 200 once the scheduler is running, 503 before
//   - /metrics: Prometheus exposition, when a metrics handler is given
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	metrics http.Handler
	ready   atomic.Bool
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a server for addr. metrics may be nil.
func NewHealthServer(addr string, logger *slog.Logger, metrics http.Handler) *HealthServer {
	return &HealthServer{addr: addr, logger: logger, metrics: metrics}
}

// Handler returns the health and metrics routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics)
	}
	return mux
}

// Start serves until ctx is canceled, then shuts down within five seconds.
// It returns nil after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// SetReady flips the readiness check.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, "ok")
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.ready.Load() {
		h.write(w, http.StatusOK, "ok")
		return
	}
	h.write(w, http.StatusServiceUnavailable, "not ready")
}

func (h *HealthServer) write(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(healthResponse{Status: status}); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
