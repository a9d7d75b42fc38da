// Package main provides the semshape binary entry point.
// Semshape validates knowledge-graph entities against registered node shapes
// and publishes structured validation reports over NATS.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semshape/config"
	shapevalidator "github.com/c360studio/semshape/processor/shape-validator"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semshape"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "semshape",
		Short: "Shape validation service for the knowledge graph",
		Long: `Semshape validates knowledge-graph entities against registered node shapes.

It consumes graph.ingest.entity messages to maintain an in-memory triple
graph, serves validation requests over JetStream, and publishes structured
reports with derived conformance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	cmd.AddCommand(shapesCmd(&configPath))
	cmd.AddCommand(validateCmd(&configPath))

	return cmd
}

func run(configPath, logLevel string) error {
	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	if err := ensureStream(ctx, cfg, natsClient, logger); err != nil {
		return err
	}

	comp, err := newValidator(cfg, natsClient, logger)
	if err != nil {
		return err
	}

	if err := comp.Initialize(); err != nil {
		return fmt.Errorf("initialize shape-validator: %w", err)
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := comp.Start(signalCtx); err != nil {
		return fmt.Errorf("start shape-validator: %w", err)
	}

	slog.Info("Semshape ready", "version", Version, "nats", cfg.NATS.URL)

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := comp.Stop(30 * time.Second); err != nil {
		slog.Error("Error stopping shape-validator", "error", err)
	}

	slog.Info("Semshape shutdown complete")
	return nil
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	url := natsURL(cfg)

	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// natsURL resolves the server URL, letting NATS_URL override the config file.
func natsURL(cfg *config.Config) string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}
	return cfg.NATS.URL
}

// ensureStream provisions the GRAPH stream when it does not exist yet.
func ensureStream(ctx context.Context, cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	js, err := natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}

	maxAge := 24 * time.Hour
	if cfg.Stream.MaxAge != "" {
		if d, parseErr := time.ParseDuration(cfg.Stream.MaxAge); parseErr == nil {
			maxAge = d
		}
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream.Name,
		Subjects: cfg.Stream.Subjects,
		MaxAge:   maxAge,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", cfg.Stream.Name, err)
	}

	logger.Debug("Stream ready", "stream", cfg.Stream.Name, "subjects", cfg.Stream.Subjects)
	return nil
}

// runnable is the lifecycle surface the component factory's Discoverable
// return is asserted to.
type runnable interface {
	Initialize() error
	Start(context.Context) error
	Stop(time.Duration) error
}

func newValidator(cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) (runnable, error) {
	rawConfig := map[string]any{
		"stream_name":           cfg.Stream.Name,
		"request_subject":       cfg.Validator.RequestSubject,
		"report_subject_prefix": cfg.Validator.ReportSubjectPrefix,
		"entity_subject":        cfg.Validator.EntitySubject,
		"shape_bucket":          cfg.Validator.ShapeBucket,
		"ingest_entities":       cfg.Validator.IngestEntities,
		"parallel":              cfg.Validator.Parallel,
		"max_concurrency":       cfg.Validator.MaxConcurrency,
		"unit_timeout":          cfg.Validator.UnitTimeout,
	}
	data, err := json.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal validator config: %w", err)
	}

	deps := component.Dependencies{
		NATSClient: natsClient,
		Logger:     logger,
	}

	comp, err := shapevalidator.NewComponent(data, deps)
	if err != nil {
		return nil, fmt.Errorf("create shape-validator: %w", err)
	}

	r, ok := comp.(runnable)
	if !ok {
		return nil, fmt.Errorf("shape-validator does not expose a lifecycle")
	}
	return r, nil
}
