package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
)

const readHeaderTimeout = 10 * time.Second

// Start binds the listen address and serves in the background.
// A bind failure is returned; later serve failures arrive on Err().
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Infow("HTTP server listening", logger.FieldAddress, ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("HTTP server failed", logger.FieldError, err)
			s.errc <- err
		}
	}()
	return nil
}

// Err delivers a serve failure after Start succeeded
func (s *Server) Err() <-chan error {
	return s.errc
}

// Stop shuts the server down, waiting for active requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown")
	}
	s.logger.Infow("HTTP server stopped")
	return nil
}
