// Package httpapi serves the Authentication Service contract over HTTP for
// local development and end-to-end tests.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/logging"
	"github.com/dmitrijs2005/siteauth/internal/server/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address     string
	users       *users.Service
	logger      logging.Logger
	flatProfile bool

	registry *prometheus.Registry
	requests *prometheus.CounterVec

	handler http.Handler
}

type Option func(*Server)

// WithMetrics counts requests and serves the registry on GET /metrics.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(s *Server) { s.registry = registry }
}

// WithFlatProfile makes /auth/profile put the user fields directly into
// data instead of data.user.
func WithFlatProfile(flat bool) Option {
	return func(s *Server) { s.flatProfile = flat }
}

func NewServer(address string, l logging.Logger, us *users.Service, opts ...Option) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "http_server"),
		users:   us,
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	if s.registry != nil {
		s.requests = promauto.With(s.registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "siteauth_devserver_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.handler = s.withRequestLog(mux)
	return s
}

// Handler exposes the routes, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
