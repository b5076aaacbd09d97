package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveRefreshToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIGNBRIDGE_TEST_REFRESH_TOKEN", "from-env")

	tests := []struct {
		name    string
		auth    AuthConfig
		want    string
		wantErr bool
	}{
		{
			name: "inline",
			auth: AuthConfig{Storage: TokenStorageTypeInline, RefreshToken: "inline-token"},
			want: "inline-token",
		},
		{
			name: "file",
			auth: AuthConfig{Storage: TokenStorageTypeFile, File: tokenFile},
			want: "from-file",
		},
		{
			name: "env",
			auth: AuthConfig{Storage: TokenStorageTypeEnv, EnvKey: "SIGNBRIDGE_TEST_REFRESH_TOKEN"},
			want: "from-env",
		},
		{
			name:    "missing file",
			auth:    AuthConfig{Storage: TokenStorageTypeFile, File: filepath.Join(dir, "absent")},
			wantErr: true,
		},
		{
			name:    "unset env",
			auth:    AuthConfig{Storage: TokenStorageTypeEnv, EnvKey: "SIGNBRIDGE_TEST_UNSET"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRefreshToken(context.Background(), tt.auth)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("resolveRefreshToken() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRefreshToken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveRefreshToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewFailsFastOnMissingCredentials(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.Storage = TokenStorageTypeEnv
	cfg.Auth.EnvKey = "SIGNBRIDGE_TEST_UNSET"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() error = nil, want error for unresolvable refresh token")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Auth.ClientSecret = ""

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() error = nil, want validation error")
	}
}

func TestNewWiresService(t *testing.T) {
	app, err := New(context.Background(), validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if app.Service() == nil {
		t.Fatal("Service() = nil")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0

	app, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}
