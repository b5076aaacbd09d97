package app

import (
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()

	cfg := &Config{
		Auth: AuthConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURI:  "https://example.com/callback",
			RefreshToken: "refresh",
		},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults() error = %v", err)
	}
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if cfg.Server.Host != DefaultConfigServerHost || cfg.Server.Port != DefaultConfigServerPort {
		t.Errorf("server = %s:%d, want %s:%d", cfg.Server.Host, cfg.Server.Port, DefaultConfigServerHost, DefaultConfigServerPort)
	}
	if cfg.Shutdown.Timeout != 5*time.Second {
		t.Errorf("Shutdown.Timeout = %v, want 5s", cfg.Shutdown.Timeout)
	}
	if cfg.Auth.URL != "https://accounts.zoho.in/oauth/v2/token" {
		t.Errorf("Auth.URL = %q", cfg.Auth.URL)
	}
	if cfg.Auth.Storage != TokenStorageTypeInline {
		t.Errorf("Auth.Storage = %q, want inline", cfg.Auth.Storage)
	}
	if cfg.Zoho.EmbedHost != "https://sign.zoho.in" {
		t.Errorf("Zoho.EmbedHost = %q", cfg.Zoho.EmbedHost)
	}
	if cfg.Request.RecipientEmail != "dummy@email.in" || cfg.Request.ExpirationDays != 1 || cfg.Request.ReminderPeriod != 8 {
		t.Errorf("Request = %+v", cfg.Request)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Request: RequestConfig{Name: "Contract", ReminderPeriod: 3},
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server = %s:%d, want 0.0.0.0:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Request.Name != "Contract" || cfg.Request.ReminderPeriod != 3 {
		t.Errorf("Request = %+v", cfg.Request)
	}
}

func TestApplyDefaultsEnvStorage(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{Storage: TokenStorageTypeEnv}}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults() error = %v", err)
	}
	if cfg.Auth.EnvKey != "ZOHO_REFRESH_TOKEN" {
		t.Errorf("Auth.EnvKey = %q, want ZOHO_REFRESH_TOKEN", cfg.Auth.EnvKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.Auth.ClientID = "" },
			wantErr: "ClientID",
		},
		{
			name:    "missing client secret",
			mutate:  func(c *Config) { c.Auth.ClientSecret = "" },
			wantErr: "ClientSecret",
		},
		{
			name:    "invalid redirect uri",
			mutate:  func(c *Config) { c.Auth.RedirectURI = "not a url" },
			wantErr: "RedirectURI",
		},
		{
			name:    "inline storage without refresh token",
			mutate:  func(c *Config) { c.Auth.RefreshToken = "" },
			wantErr: "auth.refresh_token required",
		},
		{
			name: "file storage without path",
			mutate: func(c *Config) {
				c.Auth.Storage = TokenStorageTypeFile
			},
			wantErr: "auth.file required",
		},
		{
			name:    "unknown storage",
			mutate:  func(c *Config) { c.Auth.Storage = "vault" },
			wantErr: "Storage",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "LogFormat",
		},
		{
			name:    "invalid recipient email",
			mutate:  func(c *Config) { c.Request.RecipientEmail = "nobody" },
			wantErr: "RecipientEmail",
		},
		{
			name:    "zero expiration",
			mutate:  func(c *Config) { c.Request.ExpirationDays = -1 },
			wantErr: "ExpirationDays",
		},
		{
			name:    "unknown exporter",
			mutate:  func(c *Config) { c.Telemetry.Exporter = "zipkin" },
			wantErr: "Exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
