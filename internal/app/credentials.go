package app

import (
	"context"
	"fmt"
	"log/slog"
)

// resolveRefreshToken returns the configured refresh token, reading it from
// the configured store unless it is set inline.
func resolveRefreshToken(ctx context.Context, cfg AuthConfig) (string, error) {
	if cfg.Storage == TokenStorageTypeInline {
		return cfg.RefreshToken, nil
	}

	store, err := cfg.NewTokenStore()
	if err != nil {
		return "", fmt.Errorf("failed to create token store: %w", err)
	}

	token, err := store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token from %s storage: %w", cfg.Storage, err)
	}

	slog.DebugContext(ctx, "refresh token loaded", "storage", cfg.Storage)
	return token, nil
}
