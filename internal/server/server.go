// Package server exposes the tables over HTTP: a REST API for lobby
// operations under /api and one WebSocket per seated player under /ws.
// The server owns the room manager and its background loops; backends
// for sessions, standings and the match archive are injected and
// default to in-process implementations, so a zero-config server is
// fully playable.
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/capicuhq/capicu/pkg/config"
	"github.com/capicuhq/capicu/pkg/errors"
	"github.com/capicuhq/capicu/pkg/history"
	"github.com/capicuhq/capicu/pkg/rooms"
	"github.com/capicuhq/capicu/pkg/session"
)

// Server ties the room manager to the HTTP and WebSocket surface.
type Server struct {
	cfg config.Config
	log *log.Logger

	manager  *rooms.Manager
	hub      *Hub
	upgrader websocket.Upgrader
	roomOpts []rooms.Option

	sessions  session.Store
	standings session.Leaderboard
	archive   history.Store

	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSessionStore sets the reconnect token backend.
func WithSessionStore(st session.Store) Option {
	return func(s *Server) { s.sessions = st }
}

// WithLeaderboard sets the standings backend.
func WithLeaderboard(lb session.Leaderboard) Option {
	return func(s *Server) { s.standings = lb }
}

// WithArchive sets the match history backend.
func WithArchive(st history.Store) Option {
	return func(s *Server) { s.archive = st }
}

// WithRoomOptions appends options to the server's room manager, on top
// of the ones derived from the config.
func WithRoomOptions(opts ...rooms.Option) Option {
	return func(s *Server) { s.roomOpts = opts }
}

// New wires a server around its own room manager.
func New(cfg config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log.New(io.Discard),
		sessions:  session.NewMemoryStore(),
		standings: session.NewMemoryLeaderboard(),
		archive:   history.NewNullStore(),
		started:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = newHub()
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	managerOpts := []rooms.Option{
		rooms.WithLogger(s.log),
		rooms.WithEvents(&loopEvents{s: s}),
		rooms.WithGameTimeouts(cfg.Game.TurnTimeout(), cfg.Game.PickingTimeout()),
	}
	s.manager = rooms.NewManager(append(managerOpts, s.roomOpts...)...)
	return s
}

// Manager exposes the room registry, mainly for the TUI and tests.
func (s *Server) Manager() *rooms.Manager { return s.manager }

// checkOrigin applies the configured origin allowlist to upgrades.
// Non-browser clients send no Origin header and pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Handler builds the HTTP surface: REST under /api, sockets under /ws.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleListGames)
			r.Post("/", s.handleCreateGame)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Post("/join", s.handleJoinGame)
			})
		})
		r.Get("/stats", s.handleStats)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/session/{token}", s.handleResolveSession)
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", s.handleListMatches)
			r.Get("/{matchID}", s.handleGetMatch)
		})
	})

	r.Get("/ws/{gameID}/{playerID}", s.handleWS)
	return r
}

// requestLogger logs one line per finished request. The socket path is
// skipped; its lifetime is the connection, not the request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start))
	})
}

// Run serves until ctx is canceled, then drains within the configured
// shutdown timeout. The room loops run on the same ctx.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go s.manager.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(errors.ErrCodeNetwork, err, "serve %s", s.cfg.Server.Addr)
	case <-ctx.Done():
	}

	// Upgraded sockets are hijacked and invisible to Shutdown; closing
	// them through the hub lets their handlers finish.
	s.hub.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "shutdown")
	}
	s.log.Info("server stopped")
	return nil
}
