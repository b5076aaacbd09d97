package esign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/florianilch/signbridge/internal/tokensource"
	"github.com/florianilch/signbridge/internal/zohosign"
)

// SuccessMessage is returned with the signing URL of a successful submission.
const SuccessMessage = "document has successfully send for the signature"

// maxAuthRetries bounds how often a rejected token is refreshed within one call.
const maxAuthRetries = 1

// TokenProvider hands out the cached provider access token.
type TokenProvider interface {
	// Ensure returns the cached token, refreshing it first if none is cached.
	Ensure(ctx context.Context) (string, error)
	// Refresh unconditionally fetches and caches a new token.
	Refresh(ctx context.Context) (string, error)
}

// SignClient is the subset of the Zoho Sign API the service depends on.
type SignClient interface {
	FieldTypes(ctx context.Context) (json.RawMessage, error)
	CreateRequest(ctx context.Context, doc zohosign.Document, data zohosign.CreateRequestData) (*zohosign.CreatedRequest, error)
	SubmitRequest(ctx context.Context, requestID string, action zohosign.SubmitAction) error
	EmbedToken(ctx context.Context, requestID, actionID, host string) (string, error)
}

// Compile-time check that the Zoho client satisfies SignClient.
var _ SignClient = (*zohosign.Client)(nil)

// Recipient receives the signing action.
type Recipient struct {
	Name  string
	Email string
}

// Config describes the signature request created for every submission.
type Config struct {
	RequestName    string
	Recipient      Recipient
	PrivateNotes   string
	ExpirationDays int
	ReminderPeriod int
	// EmbedHost is the origin the signing page is embedded in.
	EmbedHost string
}

// FieldTypeCatalog wraps the provider's field type listing unchanged.
type FieldTypeCatalog struct {
	Tags json.RawMessage `json:"tags"`
}

// Submission is a document to be sent for signature.
type Submission struct {
	Filename    string
	ContentType string
	Content     []byte
	Tags        []TagSelector
}

// SubmitResult carries the embeddable signing URL.
type SubmitResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Service lists field types and submits documents for signature.
type Service struct {
	tokens TokenProvider
	client SignClient
	cfg    Config
}

// New creates a Service.
func New(tokens TokenProvider, client SignClient, cfg Config) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("missing token provider")
	}
	if client == nil {
		return nil, errors.New("missing sign client")
	}
	if cfg.EmbedHost == "" {
		return nil, errors.New("missing embed host")
	}
	return &Service{tokens: tokens, client: client, cfg: cfg}, nil
}

// ListFieldTypes returns the provider's field type catalog. A 401 triggers one
// token refresh and one retry.
func (s *Service) ListFieldTypes(ctx context.Context) (*FieldTypeCatalog, error) {
	if _, err := s.tokens.Ensure(ctx); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		raw, err := s.client.FieldTypes(ctx)
		if err == nil {
			return &FieldTypeCatalog{Tags: raw}, nil
		}

		switch {
		case errors.Is(err, tokensource.ErrAuthFailure):
			return nil, err
		case !errors.Is(err, zohosign.ErrUnauthorized):
			return nil, fmt.Errorf("%w: fetching field types: %w", ErrUpstream, err)
		case attempt >= maxAuthRetries:
			return nil, fmt.Errorf("fetching field types after token refresh: %w", err)
		}

		slog.WarnContext(ctx, "access token rejected, refreshing", "attempt", attempt+1)
		if _, err := s.tokens.Refresh(ctx); err != nil {
			return nil, err
		}
	}
}

// Submit creates a signature request for the document, attaches the selected
// fields and returns the signing URL. Steps run in order and any failure aborts
// the rest. A request created before a later step fails is left on the provider.
func (s *Service) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	logger := slog.Default().With("submission_id", uuid.NewString())

	fail := func(step Step, requestID string, err error) error {
		attrs := []any{"step", step, "error", err}
		if requestID != "" {
			attrs = append(attrs, "request_id", requestID)
			logger.ErrorContext(ctx, "submission failed, provider request left unsent", attrs...)
		} else {
			logger.ErrorContext(ctx, "submission failed", attrs...)
		}
		return &SubmissionError{Step: step, RequestID: requestID, Err: err}
	}

	if err := validateTags(sub.Tags); err != nil {
		return nil, fail(StepPrepare, "", err)
	}
	if len(sub.Content) == 0 {
		return nil, fail(StepPrepare, "", errors.New("empty document"))
	}

	// 1. Create the request with the document
	if _, err := s.tokens.Ensure(ctx); err != nil {
		return nil, fail(StepCreate, "", err)
	}
	created, err := s.client.CreateRequest(ctx, zohosign.Document{
		Filename:    sub.Filename,
		ContentType: sub.ContentType,
		Content:     sub.Content,
	}, s.requestData())
	if err != nil {
		return nil, fail(StepCreate, "", err)
	}
	logger.InfoContext(ctx, "signature request created", "request_id", created.RequestID, "document_id", created.DocumentID)

	// 2. Attach field placements and send the request out
	err = s.client.SubmitRequest(ctx, created.RequestID, zohosign.SubmitAction{
		ActionRef: created.Action,
		Fields:    BuildFieldPlacements(sub.Tags, created.DocumentID),
	})
	if err != nil {
		return nil, fail(StepSubmit, created.RequestID, err)
	}
	logger.InfoContext(ctx, "signature request submitted", "request_id", created.RequestID, "fields", len(sub.Tags))

	// 3. Mint the embedded signing URL
	signURL, err := s.client.EmbedToken(ctx, created.RequestID, created.Action.ActionID, s.cfg.EmbedHost)
	if err != nil {
		return nil, fail(StepEmbed, created.RequestID, err)
	}
	logger.InfoContext(ctx, "signing url issued", "request_id", created.RequestID)

	return &SubmitResult{Message: SuccessMessage, URL: signURL}, nil
}

func (s *Service) requestData() zohosign.CreateRequestData {
	return zohosign.CreateRequestData{
		RequestName:    s.cfg.RequestName,
		ExpirationDays: s.cfg.ExpirationDays,
		IsSequential:   true,
		EmailReminders: true,
		ReminderPeriod: s.cfg.ReminderPeriod,
		Actions: []zohosign.NewAction{{
			RecipientName:    s.cfg.Recipient.Name,
			RecipientEmail:   s.cfg.Recipient.Email,
			ActionType:       "SIGN",
			PrivateNotes:     s.cfg.PrivateNotes,
			SigningOrder:     0,
			VerifyRecipient:  true,
			VerificationType: "EMAIL",
			IsEmbedded:       true,
		}},
	}
}
