// Package server exposes the connector library over HTTP. It exists to
// exercise the library end to end; the library itself has no HTTP
// dependencies outside the session middleware.
package server

import (
	"net/http"
	"time"

	"github.com/VelaTrade/dex-lib/connectormanager"
	"github.com/VelaTrade/dex-lib/session"
	"github.com/VelaTrade/dex-lib/sessiondb"
	"github.com/VelaTrade/dex-lib/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server routes HTTP requests to connectors held in the registry.
type Server struct {
	registry connectormanager.ConnectorRegistry
	store    *sessiondb.Store
	metrics  *telemetry.Metrics
	logger   *logrus.Logger
	router   chi.Router
}

// New builds the server and its route tree.
//
// Parameters:
// - registry: the live connector registry.
// - store: the session record store.
// - tracker: the session tracker used by the middleware.
// - recorder: the running session recorder.
// - metrics: the telemetry registry and counters.
// - logger: the logger for logging events.
//
// Returns:
// - *Server: the new server instance.
func New(
	registry connectormanager.ConnectorRegistry,
	store *sessiondb.Store,
	tracker session.Tracker,
	recorder *session.Recorder,
	metrics *telemetry.Metrics,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		registry: registry,
		store:    store,
		metrics:  metrics,
		logger:   logger,
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(s.requestLogger)
	mux.Use(session.Middleware(tracker, recorder, logger))

	mux.Get("/healthz", s.handleHealthz)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Route("/api/v1", func(r chi.Router) {
		r.Route("/dex/{dex}", func(r chi.Router) {
			r.Get("/connection", s.handleTestConnection)
			r.Get("/balance", s.handleWalletBalance)
			r.Get("/balance/{token}", s.handleTokenBalance)
			r.Post("/quote", s.handleSwapQuote)
			r.Post("/swap", s.handleExecuteSwap)
			r.Get("/pool", s.handlePoolInfo)
			r.Post("/liquidity", s.handleAddLiquidity)
			r.Delete("/liquidity", s.handleRemoveLiquidity)
			r.Get("/transaction/{hash}", s.handleTransactionStatus)
			r.Get("/gas-price", s.handleGasPrice)
		})
		r.Get("/sessions", s.handleRecentSessions)
	})

	s.router = mux
	return s
}

// Router returns the server's handler for use with http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
		}).Debug("Request served")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
