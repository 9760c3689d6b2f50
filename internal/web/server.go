package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vitos/crypto_dashboard/internal/metrics"
	"github.com/vitos/crypto_dashboard/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	market  *usecase.MarketService
	stream  *Stream
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewServer(port int, market *usecase.MarketService, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  http.NewServeMux(),
		market:  market,
		stream:  NewStream(market.View, m, logger),
		metrics: m,
		logger:  logger,
	}
	market.Subscribe(s.stream.Broadcast)
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Dashboard
	s.router.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.router.HandleFunc("GET /api/prices", s.handlePrices)
	s.router.HandleFunc("GET /api/series/{id}", s.handleSeries)
	s.router.HandleFunc("GET /api/currencies", s.handleCurrencies)

	// Settings
	s.router.HandleFunc("POST /api/settings", s.handleSettings)
	s.router.HandleFunc("POST /api/refresh", s.handleRefresh)

	// Push stream
	s.router.Handle("GET /ws", s.stream)

	// Status
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("GET /metrics", s.metrics.Handler())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes the stream clients, whose connections the http server no
// longer tracks, and then drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stream.Close()
	return s.server.Shutdown(ctx)
}
