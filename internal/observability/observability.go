// Package observability configures the process-wide slog logger.
//
// Records always go to a console handler (tint for text, slog JSON otherwise).
// When an OpenTelemetry exporter is configured they are additionally bridged to
// an OTel logger provider, filtered by the same minimum level.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"golang.org/x/term"
)

// instrumentationScope names the OTel logger the slog bridge writes to.
const instrumentationScope = "github.com/florianilch/signbridge"

// Format is the console log format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Exporter selects where OpenTelemetry log records are sent.
type Exporter string

const (
	ExporterNone     Exporter = "none"
	ExporterStdout   Exporter = "stdout"
	ExporterOTLPHTTP Exporter = "otlp-http"
	ExporterOTLPGRPC Exporter = "otlp-grpc"
)

// Config controls logging output.
type Config struct {
	Level  slog.Level
	Format Format
	// Exporter enables OpenTelemetry log export in addition to the console.
	Exporter Exporter
	// Endpoint overrides the OTLP endpoint URL. Empty uses the OTEL_EXPORTER_OTLP_* environment.
	Endpoint string
}

// Instrument installs the default slog logger described by cfg.
// The returned function flushes and stops any OpenTelemetry pipeline.
func Instrument(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	return instrument(ctx, os.Stderr, cfg)
}

func instrument(ctx context.Context, w io.Writer, cfg Config) (func(context.Context) error, error) {
	console, err := consoleHandler(w, cfg)
	if err != nil {
		return nil, err
	}

	shutdown := func(context.Context) error { return nil }
	handler := console

	if cfg.Exporter != "" && cfg.Exporter != ExporterNone {
		exporter, err := newExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s log exporter: %w", cfg.Exporter, err)
		}

		provider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(cfg.Level))),
		)
		shutdown = provider.Shutdown
		handler = newFanoutHandler(console, otelslog.NewHandler(instrumentationScope, otelslog.WithLoggerProvider(provider)))
	}

	// Exporter failures must not be routed back into the exporter
	consoleLogger := slog.New(console)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		consoleLogger.Error("opentelemetry error", "error", err)
	}))

	slog.SetDefault(slog.New(handler))
	return shutdown, nil
}

func consoleHandler(w io.Writer, cfg Config) (slog.Handler, error) {
	switch cfg.Format {
	case FormatText, "":
		return tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		}), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level}), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}

func newExporter(ctx context.Context, cfg Config) (sdklog.Exporter, error) {
	switch cfg.Exporter {
	case ExporterStdout:
		return stdoutlog.New()
	case ExporterOTLPHTTP:
		var opts []otlploghttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpointURL(cfg.Endpoint))
		}
		return otlploghttp.New(ctx, opts...)
	case ExporterOTLPGRPC:
		var opts []otlploggrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpointURL(cfg.Endpoint))
		}
		return otlploggrpc.New(ctx, opts...)
	default:
		return nil, errors.New("unsupported exporter")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// severity maps slog levels onto OTel severities (DEBUG=5, INFO=9, WARN=13, ERROR=17).
type severity slog.Level

func (s severity) Severity() otellog.Severity {
	return otellog.Severity(int(s) + int(otellog.SeverityInfo))
}
