// Package server exposes trainer sessions over websockets. Every connection
// plays its own session against the shared store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack-trainer/internal/session"
)

// BonusPushInterval is how often every client is sent the bonus countdown
const BonusPushInterval = time.Minute

const shutdownTimeout = 5 * time.Second

// SessionFactory builds the session for a new connection
type SessionFactory func() *session.Session

// Server represents the WebSocket server
type Server struct {
	upgrader    websocket.Upgrader
	newSession  SessionFactory
	clock       quartz.Clock
	logger      *log.Logger
	mu          sync.RWMutex
	connections map[*Connection]bool
}

// NewServer creates a new WebSocket server
func NewServer(newSession SessionFactory, clock quartz.Clock, logger *log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			// The trainer serves local clients; any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		newSession:  newSession,
		clock:       clock,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}
}

// Handler returns the HTTP routes: /ws and /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run listens on addr and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// client and shuts the listener down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return s.StartBonusTicker(ctx).Wait()
	})

	g.Go(func() error {
		<-ctx.Done()
		s.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// StartBonusTicker pushes the bonus countdown to every client each
// BonusPushInterval until ctx is done.
func (s *Server) StartBonusTicker(ctx context.Context) quartz.Waiter {
	return s.clock.TickerFunc(ctx, BonusPushInterval, func() error {
		s.broadcastBonus()
		return nil
	}, "bonus")
}

func (s *Server) broadcastBonus() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		conn.pushBonus()
	}
	s.logger.Debug("Broadcasted bonus countdown", "recipients", len(s.connections))
}

// ConnectionCount returns the number of connected clients
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) add(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

func (s *Server) remove(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client disconnected", "total", total)
}

func (s *Server) closeAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// handleWebSocket upgrades the request and gives the client a new session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sess := s.newSession()
	client := NewConnection(ws, sess, s.clock, s.logger)
	s.add(client)
	client.Start()

	// Greet with the current table so clients need not ask.
	client.replyState(nil, sess.Snapshot(), nil)

	go func() {
		<-client.Done()
		s.remove(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// WaitForHealthy polls baseURL's /health endpoint until it returns 200 OK or
// the context is cancelled.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := baseURL + "/health"
	client := &http.Client{Timeout: time.Second}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := client.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
