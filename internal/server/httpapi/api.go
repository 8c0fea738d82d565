// Package httpapi exposes the session operations over HTTP. It maps the
// service-level failure taxonomy to transport responses and carries the
// refresh token in an httpOnly cookie with a JSON-body fallback.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dkozyrev/classauth/internal/logging"
	"github.com/dkozyrev/classauth/internal/server/auth"
	"github.com/dkozyrev/classauth/internal/server/services"
)

// SessionManager is the service contract consumed by the handlers.
type SessionManager interface {
	Login(ctx context.Context, studentID, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
	Logout(ctx context.Context, presented string) error
}

// Server holds the dependencies needed by the REST handlers.
type Server struct {
	addr       string
	sessions   SessionManager
	access     *auth.Codec
	refreshTTL time.Duration
	logger     logging.Logger
}

// NewServer constructs the HTTP server. access is the access-token codec used
// by the authentication middleware; refreshTTL bounds the refresh cookie.
func NewServer(addr string, sessions SessionManager, access *auth.Codec, refreshTTL time.Duration, l logging.Logger) *Server {
	return &Server{
		addr:       addr,
		sessions:   sessions,
		access:     access,
		refreshTTL: refreshTTL,
		logger:     l.With("module", "http_server"),
	}
}

// Router returns a chi.Router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/api/ping", s.Ping)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/refresh", s.Refresh)
		r.Post("/logout", s.Logout)
		r.With(s.Authenticator).Get("/me", s.Me)
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
