package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/have-fun-was-taken/yafc-ce/internal/infrastructure/config"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the registry over HTTP for scraping
type Server struct {
	server   *http.Server
	listener net.Listener
	done     chan error
}

// StartServer binds the configured address and serves the registry in the
// background. Registry must be initialised first.
func StartServer(cfg config.MetricsConfig) (*Server, error) {
	if Registry == nil {
		return nil, fmt.Errorf("metrics registry is not initialised")
	}

	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics server on %s: %w", addr, err)
	}

	s := &Server{
		server:   &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: listener,
		done:     make(chan error, 1),
	}
	go func() {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return s, nil
}

// Addr returns the bound address, useful when port 0 was requested
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server and waits for the serve loop to exit
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return <-s.done
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector
func WriteTextfile(path string) error {
	if Registry == nil {
		return fmt.Errorf("metrics registry is not initialised")
	}
	return prometheus.WriteToTextfile(path, Registry)
}
