package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/upsbridge/internal/telemetry"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server exposing carrier operations as JSON endpoints.
type Server struct {
	port     int
	registry *shipper.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance with its own metrics registry.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(reg),
		gatherer: reg,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Carrier operations
	mux.HandleFunc("POST /v1/rates", s.handleRates)
	mux.HandleFunc("POST /v1/carriers/{carrier}/authenticate", s.handleAuthenticate)
	mux.HandleFunc("POST /v1/carriers/{carrier}/rates", s.handleRetrieveRate)
	mux.HandleFunc("POST /v1/carriers/{carrier}/shipments", s.handleCreateShipment)
	mux.HandleFunc("POST /v1/carriers/{carrier}/returns", s.handleCreateReturn)
	mux.HandleFunc("POST /v1/carriers/{carrier}/addresses/validate", s.handleValidateAddress)
	mux.HandleFunc("GET /v1/carriers/{carrier}/tracking/{trackingNumber}", s.handleTrackPackage)
	mux.HandleFunc("POST /v1/carriers/{carrier}/transit-times", s.handleEstimateDeliveryDate)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
