// HTTP endpoint for the planner metrics
//
// Serves a Recorder's registry at /metrics for Prometheus scraping, plus
// /health and /ready probes. Basic authentication is optional and only
// guards /metrics.
//
//	server := metrics.NewServer(recorder, "127.0.0.1:0")
//	if err := server.Start(); err != nil { ... }
//	defer server.Shutdown(ctx)
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Opentrons/OpenTrons/pkg/log"
)

const defaultServerTimeout = 10 * time.Second

// ServerConfig holds server configuration. Zero timeouts mean 10s.
type ServerConfig struct {
	// Address to listen on. Port 0 picks a free port; Address reports it
	// once started.
	Address string

	// Optional basic auth credentials for /metrics
	Username string
	Password string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves one Recorder over HTTP.
type Server struct {
	config  ServerConfig
	handler http.Handler
	http    *http.Server
	log     *log.Logger

	mu       sync.Mutex
	listener net.Listener
	done     chan error
}

// NewServer creates a server on addr without authentication.
func NewServer(r *Recorder, addr string) *Server {
	return NewServerWithConfig(r, ServerConfig{Address: addr})
}

// NewServerWithConfig creates a server with a custom configuration.
func NewServerWithConfig(r *Recorder, config ServerConfig) *Server {
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaultServerTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaultServerTimeout
	}

	s := &Server{config: config, log: log.GetLogger("metrics")}
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.requireAuth(promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{})))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	s.handler = mux

	s.http = &http.Server{
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler returns the routing handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background. A bind
// failure is returned directly; later serve failures arrive on Done.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("metrics server already started on %s", s.listener.Addr())
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	s.listener = ln
	s.done = make(chan error, 1)

	s.log.Info("serving metrics on %s", ln.Addr())
	go func(done chan<- error) {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("metrics server: %w", err)
		}
		close(done)
	}(s.done)
	return nil
}

// Done receives a serve error, if any, and is closed once serving stops.
// It is nil before Start.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Shutdown stops accepting scrapes and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Serving reports whether the server has been started and not shut down.
func (s *Server) Serving() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Address returns the bound address once started, else the configured one.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !s.Serving() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Not Ready\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready\n"))
}

// requireAuth wraps next with basic auth when credentials are configured.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if s.config.Username == "" && s.config.Password == "" {
		return next
	}
	user, pass := []byte(s.config.Username), []byte(s.config.Password)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(gotUser), user) != 1 ||
			subtle.ConstantTimeCompare([]byte(gotPass), pass) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="Planner Metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
