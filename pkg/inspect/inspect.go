package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weftui/weft/pkg/display"
	"github.com/weftui/weft/pkg/engine"
)

const (
	writeTimeout = 10 * time.Second

	// clientBuffer is the per-client pass-stats queue. A client that falls
	// this far behind is disconnected rather than backing up the engine.
	clientBuffer = 16
)

// Snapshotter is the store view the inspector reads. display.MemoryStore
// implements it; hosts with custom stores can expose their own.
type Snapshotter interface {
	Snapshot() []display.MemoryNode
	Stats() display.MemoryStats
}

// Server is the debug inspector: an HTTP server exposing the engine's
// pass stats, diagnostics, and display-tree snapshots, plus a WebSocket
// stream of per-pass stats.
type Server struct {
	engine *engine.Engine
	store  Snapshotter
	log    *slog.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu      sync.Mutex
	clients map[chan engine.PassStats]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates an inspector server listening on addr. Wire Observe into
// the engine with engine.WithPassObserver to feed the live stream.
func New(addr string, e *engine.Engine, store Snapshotter, opts ...Option) *Server {
	s := &Server{
		engine:  e,
		store:   store,
		log:     slog.Default(),
		clients: make(map[chan engine.PassStats]struct{}),
		upgrader: websocket.Upgrader{
			// Cross-origin pages may not open the stream. Non-browser
			// clients send no Origin and are allowed.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		WriteTimeout: writeTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/pass", s.handlePass)
	r.Get("/api/diagnostics", s.handleDiagnostics)
	r.Get("/api/nodes", s.handleNodes)
	r.Get("/ws/passes", s.handlePassStream)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start begins serving in the background. The server stops when ctx is
// canceled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	go func() {
		s.log.Info("inspector listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("inspector server error", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for ch := range s.clients {
		close(ch)
		delete(s.clients, ch)
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the inspector's HTTP handler for embedding into an
// existing server instead of running standalone.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Observe feeds one pass's stats to all connected stream clients. Slow
// clients are dropped. Intended for engine.WithPassObserver.
func (s *Server) Observe(stats engine.PassStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- stats:
		default:
			close(ch)
			delete(s.clients, ch)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.LastPass())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags := s.engine.Diagnostics()
	out := make([]map[string]any, len(diags))
	for i, d := range diags {
		out[i] = map[string]any{
			"code":       d.Code,
			"message":    d.Message,
			"invocation": d.Invocation,
			"presenter":  d.Presenter,
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "no snapshot source configured", http.StatusNotImplemented)
		return
	}
	writeJSON(w, map[string]any{
		"stats": s.store.Stats(),
		"nodes": s.store.Snapshot(),
	})
}

// handlePassStream upgrades to WebSocket and streams one JSON PassStats
// message per completed pass until the client disconnects.
func (s *Server) handlePassStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("stream upgrade failed", "error", err)
		return
	}

	ch := make(chan engine.PassStats, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	// Reader: discard client messages, detect disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				if _, ok := s.clients[ch]; ok {
					close(ch)
					delete(s.clients, ch)
				}
				s.mu.Unlock()
				return
			}
		}
	}()

	defer conn.Close()
	for stats := range ch {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(stats); err != nil {
			s.mu.Lock()
			if _, ok := s.clients[ch]; ok {
				close(ch)
				delete(s.clients, ch)
			}
			s.mu.Unlock()
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "inspector shutting down"),
		time.Now().Add(time.Second))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
