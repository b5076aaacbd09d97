package zohosign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the Zoho Sign API root for the India data centre.
	DefaultBaseURL = "https://sign.zoho.in/api/v1"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithTransport sets the base transport beneath the OAuth2 transport.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds each API call. Defaults to 60 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// Client calls the Zoho Sign API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a Client for the API rooted at baseURL, authenticating with ts.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if ts == nil {
		return nil, errors.New("missing token source")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	cfg := &clientConfig{
		baseTransport: http.DefaultTransport,
		timeout:       60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   cfg.timeout,
			Transport: &oauth2.Transport{Source: ts, Base: cfg.baseTransport},
		},
	}, nil
}

// FieldTypes returns the field type catalog exactly as Zoho Sign sends it.
func (c *Client) FieldTypes(ctx context.Context) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint("fieldtypes"), nil, "")
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("field types response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

// CreateRequest uploads doc and creates a draft signature request.
func (c *Client) CreateRequest(ctx context.Context, doc Document, data CreateRequestData) (*CreatedRequest, error) {
	if doc.ContentType == "" || doc.ContentType == "application/octet-stream" {
		doc.ContentType = mimetype.Detect(doc.Content).String()
	}

	payload, err := json.Marshal(envelope[CreateRequestData]{Requests: data})
	if err != nil {
		return nil, fmt.Errorf("marshaling request data: %w", err)
	}

	body, contentType, err := newFormBuilder().
		file("file", doc).
		field("data", string(payload)).
		finish()
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("requests"), body, contentType)
	if err != nil {
		return nil, err
	}

	created := &CreatedRequest{
		RequestID:  gjson.GetBytes(resp, "requests.request_id").String(),
		DocumentID: gjson.GetBytes(resp, "requests.document_ids.0.document_id").String(),
	}
	action := gjson.GetBytes(resp, "requests.actions.0")
	created.Action = ActionRef{
		ActionID:       action.Get("action_id").String(),
		RecipientName:  action.Get("recipient_name").String(),
		RecipientEmail: action.Get("recipient_email").String(),
		ActionType:     action.Get("action_type").String(),
	}

	switch {
	case created.RequestID == "":
		return nil, errors.New("create response missing requests.request_id")
	case created.Action.ActionID == "":
		return nil, errors.New("create response missing requests.actions[0].action_id")
	case created.DocumentID == "":
		return nil, errors.New("create response missing requests.document_ids[0].document_id")
	}
	return created, nil
}

// SubmitRequest attaches fields to the request's action and sends it out for signature.
func (c *Client) SubmitRequest(ctx context.Context, requestID string, action SubmitAction) error {
	payload, err := json.Marshal(envelope[submitRequestData]{
		Requests: submitRequestData{Actions: []SubmitAction{action}},
	})
	if err != nil {
		return fmt.Errorf("marshaling submit data: %w", err)
	}

	body, contentType, err := newFormBuilder().
		field("data", string(payload)).
		finish()
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, c.endpoint("requests", requestID, "submit"), body, contentType)
	return err
}

// EmbedToken mints a signing URL for an embedded action. host is the origin
// the signing page will be embedded in.
func (c *Client) EmbedToken(ctx context.Context, requestID, actionID, host string) (string, error) {
	body, contentType, err := newFormBuilder().
		field("host", host).
		finish()
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoint("requests", requestID, "actions", actionID, "embedtoken"), body, contentType)
	if err != nil {
		return "", err
	}

	signURL := gjson.GetBytes(resp, "sign_url").String()
	if signURL == "" {
		return "", errors.New("embed token response missing sign_url")
	}
	return signURL, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

// do performs the call and returns the response body of a successful response.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	slog.DebugContext(ctx, "zoho sign call",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	// Some rejections come back as 200 with a failure status
	if gjson.GetBytes(data, "status").String() == "failure" {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}
