package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/signbridge/internal/esign"
	"github.com/florianilch/signbridge/internal/server"
	"github.com/florianilch/signbridge/internal/tokensource"
	"github.com/florianilch/signbridge/internal/zohosign"
)

// App orchestrates the lifecycle of the HTTP server and related services.
type App struct {
	cfg     *Config
	service *esign.Service
	server  *server.Server
}

// New creates a new App instance. The refresh token is resolved here so that
// missing credentials fail at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	refreshToken, err := resolveRefreshToken(ctx, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve refresh token: %w", err)
	}

	provider, err := tokensource.NewProvider(tokensource.Credentials{
		AuthURL:      cfg.Auth.URL,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		RedirectURI:  cfg.Auth.RedirectURI,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}

	client, err := zohosign.New(cfg.Zoho.APIURL, provider, zohosign.WithTimeout(cfg.Zoho.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create zoho sign client: %w", err)
	}

	svc, err := esign.New(provider, client, esign.Config{
		RequestName: cfg.Request.Name,
		Recipient: esign.Recipient{
			Name:  cfg.Request.RecipientName,
			Email: cfg.Request.RecipientEmail,
		},
		PrivateNotes:   cfg.Request.PrivateNotes,
		ExpirationDays: cfg.Request.ExpirationDays,
		ReminderPeriod: cfg.Request.ReminderPeriod,
		EmbedHost:      cfg.Zoho.EmbedHost,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create esign service: %w", err)
	}

	srv, err := server.New(svc, server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &App{
		cfg:     cfg,
		service: svc,
		server:  srv,
	}, nil
}

// Service returns the e-signature service, for one-shot commands that bypass HTTP.
func (a *App) Service() *esign.Service {
	return a.service
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting http server", "address", address)
	serverErrCh, err := a.server.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.server.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-serverErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "server runtime error", "error", err)
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
