/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server is the HTTP host for the info, metrics and probe handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/beamlit/appinfo/internal/config"
)

const (
	InfoPath    = "/get_info"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"
	ReadyPath   = "/readyz"
)

// Server routes the info, metrics and probe endpoints.
type Server struct {
	cfg     config.ServerConfig
	logger  logr.Logger
	handler http.Handler
}

func New(cfg config.ServerConfig, info, metrics http.Handler, logger logr.Logger) *Server {
	mux := http.NewServeMux()
	// GET patterns also match HEAD; other methods get a 405 with an Allow header.
	mux.Handle(http.MethodGet+" "+InfoPath, info)
	mux.Handle(http.MethodGet+" "+MetricsPath, metrics)

	checks := map[string]healthz.Checker{"ping": healthz.Ping}
	registerProbe(mux, HealthPath, &healthz.Handler{Checks: checks})
	registerProbe(mux, ReadyPath, &healthz.Handler{Checks: checks})

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: withLogging(withRecovery(mux), logger),
	}
}

// registerProbe mounts h for the aggregated check at path and for individual
// checks below it, e.g. /healthz/ping.
func registerProbe(mux *http.ServeMux, path string, h http.Handler) {
	mux.Handle(path, http.StripPrefix(path, h))
	mux.Handle(path+"/", http.StripPrefix(path, h))
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return log.IntoContext(context.Background(), s.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("HTTP listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving HTTP: %w", err)
	}
	return nil
}
