package server

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/metrics"
)

// Server is the status and control surface of the watcher
type Server struct {
	addr          string
	watchFolder   string
	consumeFolder string

	processor *intake.Processor
	tracker   *intake.Tracker
	metrics   *metrics.Collector
	limiter   *rate.Limiter // nil = unlimited force-process calls
	logger    *zap.SugaredLogger

	router     chi.Router
	httpServer *http.Server
	errc       chan error
}

// Option customizes a Server
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithForceProcessLimit caps manual imports per minute. Zero disables the cap.
func WithForceProcessLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	}
}

// New creates a server for cfg that hands manual requests to processor
func New(cfg *am.Config, processor *intake.Processor, opts ...Option) *Server {
	s := &Server{
		addr:          cfg.Server.Addr(),
		watchFolder:   filepath.Clean(cfg.Watch.Folder),
		consumeFolder: filepath.Clean(cfg.Consume.Folder),
		processor:     processor,
		tracker:       processor.Tracker(),
		logger:        logger.ComponentLogger("server"),
		errc:          make(chan error, 1),
	}
	WithForceProcessLimit(cfg.Server.ForceProcessPerMinute)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRoutes()
	return s
}

// Handler returns the routed handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}
