// Package server exposes ship generation over HTTP and live viewer sessions over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/shipyard/internal/cache"
	"github.com/lawnchairsociety/shipyard/internal/config"
	"github.com/lawnchairsociety/shipyard/internal/database"
	"github.com/lawnchairsociety/shipyard/internal/logger"
)

type Server struct {
	cfg          *config.Config
	db           *database.Database
	cache        cache.Cache
	connLimiter  *ConnLimiter
	rateLimiter  *RateLimiter
	handler      http.Handler
	httpServer   *http.Server
	mu           sync.Mutex
	sessions     map[*websocket.Conn]struct{}
	shutdown     chan struct{}
	shutdownOnce sync.Once
	StartTime    time.Time
}

// NewServer wires the router. db may be nil, which disables the catalog and
// history endpoints; a nil cache is replaced by an in-memory one.
func NewServer(cfg *config.Config, db *database.Database, c cache.Cache) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if c == nil {
		c = cache.NewMemory(cfg.Cache.MemoryEntries)
	}
	s := &Server{
		cfg:         cfg,
		db:          db,
		cache:       c,
		connLimiter: NewConnLimiter(cfg.Connections),
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		sessions:    make(map[*websocket.Conn]struct{}),
		shutdown:    make(chan struct{}),
		StartTime:   time.Now(),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
		IdleTimeout:  s.cfg.Server.IdleTimeout(),
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("Server listening", "address", listener.Addr().String())

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, closes viewer sessions and waits for
// in-flight requests until ctx expires. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		s.rateLimiter.Stop()

		s.mu.Lock()
		srv := s.httpServer
		for conn := range s.sessions {
			conn.Close()
		}
		s.mu.Unlock()

		if srv != nil {
			err = srv.Shutdown(ctx)
		}

		logger.Info("Server shutdown complete", "uptime", s.GetUptime().Round(time.Second))
	})
	return err
}

// GetUptime returns how long the server has been running.
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.StartTime)
}

// SessionCount returns the number of open viewer sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) isShuttingDown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}
