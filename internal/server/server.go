// Package server wires the sandbox resolver, PTY manager, and session
// store into an HTTP surface: login/logout/status, the read-only
// filesystem endpoints, and the two WebSocket bridges.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/StarsInDmajor/literm/internal/config"
	"github.com/StarsInDmajor/literm/internal/ptyexec"
	"github.com/StarsInDmajor/literm/internal/sandbox"
	"github.com/StarsInDmajor/literm/internal/session"
)

// AppState is the process-wide, read-only-shared collaborator set every
// handler consults. It is safe for concurrent use by any number of
// handlers and WebSocket connections.
type AppState struct {
	Config   *config.Config
	Sandbox  *sandbox.Resolver
	PTY      *ptyexec.Manager
	Sessions *session.Store
}

// Server builds and holds the chi router over an AppState.
type Server struct {
	state *AppState
	mux   *chi.Mux
}

// New constructs a Server and registers every route.
func New(state *AppState) *Server {
	s := &Server{state: state, mux: chi.NewRouter()}
	s.routes()
	return s
}

// Handler returns the root http.Handler for this server.
func (s *Server) Handler() *chi.Mux {
	return s.mux
}

func (s *Server) routes() {
	s.mux.Use(middleware.Recoverer)
	s.mux.Use(middleware.RequestID)

	// Unauthenticated.
	s.mux.Post("/api/login", s.handleLogin)
	s.mux.Post("/api/logout", s.handleLogout)
	s.mux.Get("/api/auth/status", s.handleAuthStatus)

	// Authenticated.
	s.mux.Group(func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/api/fs/list", s.handleFsList)
		r.Get("/api/fs/content", s.handleFsContent)
		r.Get("/api/fs/raw", s.handleFsRaw)
		if s.state.Config.Features.EnableHDF5 {
			r.Get("/api/fs/hdf5", s.handleFsHDF5)
		}

		r.Get("/ws/term", s.handleTerminalWS)
		r.Get("/ws/system", s.handleWatchWS)
	})
}
