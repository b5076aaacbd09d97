package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/signbridge/internal/app"
	"github.com/florianilch/signbridge/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	return newRootCommand().Run(ctx, args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "signbridge",
		Usage: "Zoho Sign e-signature bridge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
		},
		Commands: []*cli.Command{
			startCommand(),
			tagsCommand(),
		},
	}
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server--host",
				Usage: "server host",
				Value: app.DefaultConfigServerHost,
			},
			&cli.IntFlag{
				Name:  "server--port",
				Usage: "server port",
				Value: int(app.DefaultConfigServerPort),
			},
			&cli.StringFlag{
				Name:  "zoho--api-url",
				Usage: "Zoho Sign API base URL",
				Value: app.DefaultConfigZohoAPIURL,
			},
			&cli.StringFlag{
				Name:  "telemetry--exporter",
				Usage: "OpenTelemetry log exporter (none|stdout|otlp-http|otlp-grpc)",
				Value: string(app.DefaultConfigTelemetryExporter),
			},
		},
		Action: startAction,
	}
}

func startAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer flush(shutdown)

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}

func tagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "list the signature field types offered by Zoho Sign",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the raw catalog as JSON",
			},
		},
		Action: tagsAction,
	}
}

func tagsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer flush(shutdown)

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	catalog, err := application.Service().ListFieldTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch field types: %w", err)
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	if cmd.Bool("json") {
		_, err := fmt.Fprintln(out, string(catalog.Tags))
		return err
	}
	return writeFieldTypes(out, catalog.Tags)
}

// writeFieldTypes prints one row per field type in the provider's catalog.
func writeFieldTypes(w io.Writer, catalog []byte) error {
	if !gjson.ValidBytes(catalog) {
		return errors.New("field type catalog is not valid JSON")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tMANDATORY")
	gjson.GetBytes(catalog, "field_types").ForEach(func(_, ft gjson.Result) bool {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			ft.Get("field_type_name").String(),
			ft.Get("field_category").String(),
			strconv.FormatBool(ft.Get("is_mandatory").Bool()),
		)
		return true
	})
	return tw.Flush()
}

// setup loads the configuration and installs the logger.
func setup(ctx context.Context, cmd *cli.Command) (*app.Config, func(context.Context) error, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	shutdown, err := observability.Instrument(ctx, observability.Config{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Exporter: cfg.Telemetry.Exporter,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	return cfg, shutdown, nil
}

func flush(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), app.DefaultConfigShutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		slog.Error("failed to flush telemetry", "error", err)
	}
}
