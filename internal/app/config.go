package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os/user"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/signbridge/internal/observability"
	"github.com/florianilch/signbridge/internal/server"
	"github.com/florianilch/signbridge/internal/tokensource"
	"github.com/florianilch/signbridge/internal/tokenstore"
	"github.com/florianilch/signbridge/internal/zohosign"
)

// TokenStorageType represents where the refresh token is read from.
type TokenStorageType string

const (
	TokenStorageTypeInline  TokenStorageType = "inline"
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeEnv     TokenStorageType = "env"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
)

// keyringService is the keyring service name refresh tokens are stored under.
const keyringService = "signbridge-zoho-refresh-token"

// Default configuration values
const (
	DefaultConfigLogFormat         = observability.FormatText
	DefaultConfigTelemetryExporter = observability.ExporterNone
	DefaultConfigServerHost        = "127.0.0.1"
	DefaultConfigServerPort        = 3000
	DefaultConfigMaxUploadBytes    = server.DefaultMaxUploadBytes
	DefaultConfigShutdownTimeout   = 5 * time.Second
	DefaultConfigZohoAPIURL        = zohosign.DefaultBaseURL
	DefaultConfigZohoEmbedHost     = "https://sign.zoho.in"
	DefaultConfigZohoTimeout       = 60 * time.Second
	DefaultConfigAuthURL           = tokensource.DefaultAuthURL
	DefaultConfigAuthStorage       = TokenStorageTypeInline
	DefaultConfigRequestName       = "Alak"
	DefaultConfigRecipientName     = "Dummy"
	DefaultConfigRecipientEmail    = "dummy@email.in"
	DefaultConfigPrivateNotes      = "Please get back to us for further queries"
	DefaultConfigExpirationDays    = 1
	DefaultConfigReminderPeriod    = 8
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Host           string `json:"host" validate:"hostname_rfc1123|ip"`
	Port           uint16 `json:"port"` // Port range 0-65535 handled by uint16 type
	MaxUploadBytes int64  `json:"max_upload_bytes" validate:"gt=0"`
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// TelemetryConfig holds OpenTelemetry log export configuration.
type TelemetryConfig struct {
	Exporter observability.Exporter `json:"exporter" validate:"oneof=none stdout otlp-http otlp-grpc"`
	Endpoint string                 `json:"endpoint" validate:"omitempty,url"`
}

// ZohoConfig holds Zoho Sign API configuration.
type ZohoConfig struct {
	APIURL string `json:"api_url" validate:"required,url"`
	// EmbedHost is the origin the signing page is embedded in.
	EmbedHost string        `json:"embed_host" validate:"required,url"`
	Timeout   time.Duration `json:"timeout"`
}

// AuthConfig holds the OAuth2 client credentials and where the refresh token comes from.
type AuthConfig struct {
	URL          string `json:"url" validate:"required,url"`
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	RedirectURI  string `json:"redirect_uri" validate:"required,url"`

	Storage TokenStorageType `json:"storage" validate:"required,oneof=inline file env keyring"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	RefreshToken string `json:"refresh_token,omitempty"` // For inline storage
	File         string `json:"file,omitempty"`          // For file storage: path to token file
	EnvKey       string `json:"env_key,omitempty"`       // For env storage: environment variable name
	KeyringUser  string `json:"keyring_user,omitempty"`  // For keyring storage: user identifier
}

// NewTokenStore creates a TokenStore for non-inline storage types.
func (a *AuthConfig) NewTokenStore() (tokenstore.TokenStore, error) {
	switch a.Storage {
	case TokenStorageTypeFile:
		return tokenstore.NewFileStore(a.File)
	case TokenStorageTypeEnv:
		return tokenstore.NewEnvStore(a.EnvKey)
	case TokenStorageTypeKeyring:
		return tokenstore.NewKeyringStore(keyringService, a.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
}

// RequestConfig describes the signature request created for each submission.
type RequestConfig struct {
	Name           string `json:"name" validate:"required"`
	RecipientName  string `json:"recipient_name" validate:"required"`
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	PrivateNotes   string `json:"private_notes"`
	ExpirationDays int    `json:"expiration_days" validate:"gte=1"`
	ReminderPeriod int    `json:"reminder_period" validate:"gte=1"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level           `json:"log_level"`
	LogFormat observability.Format `json:"log_format" validate:"oneof=text json"`
	Telemetry TelemetryConfig      `json:"telemetry"`
	Server    ServerConfig         `json:"server"`
	Shutdown  ShutdownConfig       `json:"shutdown"`
	Zoho      ZohoConfig           `json:"zoho"`
	Auth      AuthConfig           `json:"auth"`
	Request   RequestConfig        `json:"request"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = DefaultConfigTelemetryExporter
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = DefaultConfigMaxUploadBytes
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Zoho.APIURL == "" {
		c.Zoho.APIURL = DefaultConfigZohoAPIURL
	}
	if c.Zoho.EmbedHost == "" {
		c.Zoho.EmbedHost = DefaultConfigZohoEmbedHost
	}
	if c.Zoho.Timeout == 0 {
		c.Zoho.Timeout = DefaultConfigZohoTimeout
	}
	if c.Auth.URL == "" {
		c.Auth.URL = DefaultConfigAuthURL
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}
	if c.Request.Name == "" {
		c.Request.Name = DefaultConfigRequestName
	}
	if c.Request.RecipientName == "" {
		c.Request.RecipientName = DefaultConfigRecipientName
	}
	if c.Request.RecipientEmail == "" {
		c.Request.RecipientEmail = DefaultConfigRecipientEmail
	}
	if c.Request.PrivateNotes == "" {
		c.Request.PrivateNotes = DefaultConfigPrivateNotes
	}
	if c.Request.ExpirationDays == 0 {
		c.Request.ExpirationDays = DefaultConfigExpirationDays
	}
	if c.Request.ReminderPeriod == 0 {
		c.Request.ReminderPeriod = DefaultConfigReminderPeriod
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			c.Auth.EnvKey = "ZOHO_REFRESH_TOKEN"
		}
	case TokenStorageTypeInline, TokenStorageTypeFile:
		// refresh_token and file must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and storage-specific settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case TokenStorageTypeInline:
		if c.Auth.RefreshToken == "" {
			return errors.New("auth.refresh_token required for inline storage")
		}
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("auth.file required for file storage")
		}
	case TokenStorageTypeEnv:
		if c.Auth.EnvKey == "" {
			return errors.New("auth.env_key required for env storage")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("auth.keyring_user required for keyring storage")
		}
	}

	return nil
}
