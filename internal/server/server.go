// Package server exposes the simulation to browsers: a websocket feed of
// highlight changes that also accepts commands, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/proximity/internal/config"
	"github.com/zeusync/proximity/internal/core/events/bus"
	"github.com/zeusync/proximity/internal/core/observability/log"
	"github.com/zeusync/proximity/internal/sim"
)

const (
	minSendBuffer  = 16
	maxMessageSize = 64 * 1024
	writeWait      = 10 * time.Second
	commandTimeout = 5 * time.Second
)

// Server serves the feed and the metrics endpoint.
type Server struct {
	config   config.ServerConfig
	sim      Commander
	gatherer prometheus.Gatherer
	logger   log.Log

	upgrader   websocket.Upgrader
	sub        bus.Subscription
	httpServer *http.Server
	listener   net.Listener

	mu      sync.Mutex
	clients map[*client]struct{}
	conns   sync.WaitGroup
	dropped atomic.Uint64

	running atomic.Bool
	closed  atomic.Bool
}

// New creates a server and subscribes it to highlight changes on b. A nil
// gatherer disables /metrics.
func New(cfg config.ServerConfig, b bus.EventBus, commander Commander, gatherer prometheus.Gatherer, logger log.Log) (*Server, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	cfg.SendBuffer = max(cfg.SendBuffer, minSendBuffer)

	s := &Server{
		config:   cfg,
		sim:      commander,
		gatherer: gatherer,
		logger:   logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}

	sub, err := b.Subscribe(sim.EventHighlightChanged, s.broadcast)
	if err != nil {
		return nil, fmt.Errorf("subscribe to highlights: %w", err)
	}
	s.sub = sub
	return s, nil
}

// Handler routes /ws, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down, disconnects feed clients and waits for
// their handlers within ctx. A stopped server cannot be restarted.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)
	s.logger.Info("Stopping server")

	_ = s.sub.Cancel()
	err := s.httpServer.Shutdown(ctx)

	// Hijacked websocket connections are not closed by Shutdown.
	s.mu.Lock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}

	s.logger.Info("Server stopped", log.Uint64("dropped_messages", s.dropped.Load()))
	return err
}

// Clients returns the number of connected feed clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped returns how many feed messages were discarded for slow clients.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// broadcast fans a highlight change out to every client without blocking
// the tick. Clients whose buffer is full miss the message.
func (s *Server) broadcast(e bus.Event) error {
	change, ok := e.Data().(sim.HighlightChange)
	if !ok {
		return nil
	}
	data, err := json.Marshal(Message{Type: TypeHighlight, Highlight: &change})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}
