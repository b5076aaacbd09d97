package tokensource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ErrAuthFailure is returned when the refresh-token exchange fails.
var ErrAuthFailure = errors.New("failed to fetch access token")

// Credentials are the static OAuth2 client settings used for every refresh.
type Credentials struct {
	AuthURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
}

// Option configures a Provider.
type Option func(*providerConfig)

type providerConfig struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithTransport sets a custom base transport for token refresh requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *providerConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds every refresh request. Defaults to 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *providerConfig) {
		c.timeout = timeout
	}
}

// Provider caches a Zoho access token in memory and refreshes it on demand.
// It is safe for concurrent use; concurrent refreshes share one exchange.
type Provider struct {
	oauth2Config *oauth2.Config
	refreshToken string
	httpClient   *http.Client

	mu          sync.RWMutex
	accessToken string

	group singleflight.Group
}

// Compile-time check to ensure Provider implements oauth2.TokenSource
var _ oauth2.TokenSource = (*Provider)(nil)

// NewProvider creates a Provider. No I/O is performed until the first refresh.
func NewProvider(creds Credentials, opts ...Option) (*Provider, error) {
	switch {
	case creds.AuthURL == "":
		return nil, errors.New("missing auth URL")
	case creds.ClientID == "":
		return nil, errors.New("missing client id")
	case creds.ClientSecret == "":
		return nil, errors.New("missing client secret")
	case creds.RefreshToken == "":
		return nil, errors.New("missing refresh token")
	}

	cfg := &providerConfig{
		baseTransport: http.DefaultTransport,
		timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Provider{
		oauth2Config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  creds.AuthURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: creds.RefreshToken,
		httpClient: &http.Client{
			Timeout: cfg.timeout,
			Transport: &tokenRefreshTransport{
				base:        cfg.baseTransport,
				redirectURI: creds.RedirectURI,
			},
		},
	}, nil
}

// AccessToken returns the cached access token, or "" if none has been fetched yet.
func (p *Provider) AccessToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accessToken
}

// Ensure returns the cached access token, refreshing first if the cache is empty.
func (p *Provider) Ensure(ctx context.Context) (string, error) {
	if token := p.AccessToken(); token != "" {
		return token, nil
	}
	return p.Refresh(ctx)
}

// Refresh exchanges the refresh token for a new access token and caches it.
// On failure the previously cached token is kept and ErrAuthFailure is returned.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	v, err, shared := p.group.Do("refresh", func() (any, error) {
		// Callers joining the flight must not inherit the first caller's cancellation
		return p.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	if shared {
		slog.DebugContext(ctx, "joined in-flight token refresh")
	}
	return v.(string), nil
}

func (p *Provider) refresh(ctx context.Context) (string, error) {
	// oauth2 picks up the HTTP client from the context
	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	// A token without an access token is invalid, so Token() always hits the endpoint
	token, err := p.oauth2Config.TokenSource(oauthCtx, &oauth2.Token{RefreshToken: p.refreshToken}).Token()
	if err != nil {
		slog.ErrorContext(ctx, "token refresh failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}

	p.mu.Lock()
	p.accessToken = token.AccessToken
	p.mu.Unlock()

	if token.Expiry.IsZero() {
		slog.InfoContext(ctx, "access token refreshed")
	} else {
		slog.InfoContext(ctx, "access token refreshed", "expires_in", time.Until(token.Expiry).Round(time.Second).String())
	}
	return token.AccessToken, nil
}

// Token implements oauth2.TokenSource.
func (p *Provider) Token() (*oauth2.Token, error) {
	// oauth2.TokenSource.Token() has no context parameter (legacy interface limitation).
	// Refresh duration is still bounded by the HTTP client timeout.
	accessToken, err := p.Ensure(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   TokenType,
	}, nil
}

// tokenRefreshTransport adds redirect_uri to oauth2's form-encoded refresh requests.
// The oauth2 package guarantees this transport only receives token endpoint requests.
type tokenRefreshTransport struct {
	base        http.RoundTripper
	redirectURI string
}

// Compile-time check that tokenRefreshTransport implements http.RoundTripper.
var _ http.RoundTripper = (*tokenRefreshTransport)(nil)

// RoundTrip rewrites the form body and forwards the cloned request.
func (t *tokenRefreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.redirectURI == "" || req.Body == nil {
		return t.base.RoundTrip(req)
	}

	defer func() { _ = req.Body.Close() }()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}
	if form.Get("redirect_uri") == "" {
		form.Set("redirect_uri", t.redirectURI)
	}
	encoded := []byte(form.Encode())

	newReq := req.Clone(req.Context())
	newReq.Body = io.NopCloser(bytes.NewReader(encoded))
	newReq.ContentLength = int64(len(encoded))

	return t.base.RoundTrip(newReq)
}
