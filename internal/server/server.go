package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/laneracer/internal/core/observability/log"
)

// Server exposes a Feed over HTTP and websockets. It only reads race
// state; nothing a client sends reaches the simulation.
type Server struct {
	config Config
	feed   *Feed
	logger log.Log

	running  atomic.Bool
	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	served   chan error
}

// Config holds server configuration
type Config struct {
	ListenAddr        string
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8787",
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// NewServer creates a server for feed.
func NewServer(config Config, feed *Feed, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Server{
		config: config,
		feed:   feed,
		logger: logger.With(log.String("component", "server")),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /track", s.handleTrack)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if s.config.ListenAddr == "" {
		return ErrInvalidConfig
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to listen", log.String("addr", s.config.ListenAddr), log.Error(err))
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	served := make(chan error, 1)

	s.mu.Lock()
	s.http = srv
	s.listener = listener
	s.served = served
	s.mu.Unlock()

	go func() {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound listen address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down and disconnects feed clients.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")

	s.mu.Lock()
	srv, served := s.http, s.served
	s.http, s.listener, s.served = nil, nil, nil
	s.mu.Unlock()

	s.feed.Close()
	err := srv.Shutdown(ctx)
	if serveErr := <-served; serveErr != nil {
		err = errors.Join(err, serveErr)
	}

	s.logger.Info("Server stopped")
	return err
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Stop(stopCtx)
}
