package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/florianilch/signbridge/internal/esign"
)

// DefaultMaxUploadBytes bounds the multipart body of a submission.
const DefaultMaxUploadBytes int64 = 32 << 20

// ESignService is the business API served over HTTP.
type ESignService interface {
	ListFieldTypes(ctx context.Context) (*esign.FieldTypeCatalog, error)
	Submit(ctx context.Context, sub esign.Submission) (*esign.SubmitResult, error)
}

// Compile-time check that the esign service satisfies ESignService
var _ ESignService = (*esign.Service)(nil)

// Option configures a Server.
type Option func(*config)

type config struct {
	maxUploadBytes int64
	logger         *slog.Logger
}

// WithMaxUploadBytes bounds the size of submission request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(c *config) {
		c.maxUploadBytes = n
	}
}

// WithLogger sets the logger used for request logging. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Server exposes the e-signature operations over HTTP.
type Server struct {
	router chi.Router
	server *http.Server
}

// Compile-time check that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates a Server backed by svc.
func New(svc ESignService, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("missing esign service")
	}

	cfg := &config{
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handlers{svc: svc, maxUploadBytes: cfg.maxUploadBytes}

	r := chi.NewRouter()
	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		Logging(cfg.logger),
		Recovery,
	)

	r.Get("/healthz", h.health)
	r.Route("/zoho", func(r chi.Router) {
		r.Get("/get-esign-tags", h.getESignTags)
		r.Post("/submit-for-esign", h.submitForESign)
	})

	return &Server{router: r}, nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,  // Uploads may be large
		WriteTimeout:      3 * time.Minute,  // Submission makes three sequential upstream calls
		IdleTimeout:       90 * time.Second, // Keep-alive wait for next request from client
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := s.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
