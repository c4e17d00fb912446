package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/term"

	"github.com/stacklok/pyxis-mcp-server/internal/config"
	"github.com/stacklok/pyxis-mcp-server/internal/mcpserver"
	"github.com/stacklok/pyxis-mcp-server/internal/pyxis"
	"github.com/stacklok/pyxis-mcp-server/internal/telemetry"
	"github.com/stacklok/pyxis-mcp-server/internal/tools"
	"github.com/stacklok/pyxis-mcp-server/internal/versions"
)

const telemetryShutdownTimeout = 5 * time.Second

type serveFlags struct {
	configPath string
	envFile    string
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio (the default) or streamable HTTP.

Settings are read, in increasing precedence, from the optional YAML file
(--config), the dotenv file (--env-file, .env by default), PYXIS_*
environment variables and the flags below.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, v)
		},
	}

	if err := registerServeFlags(cmd, flags, v); err != nil {
		slog.Error("Failed to register serve flags", "error", err)
	}

	return cmd
}

// registerServeFlags adds the serve flags to cmd. The transport and address
// flags are bound to v so that, once changed, they override the environment.
func registerServeFlags(cmd *cobra.Command, flags *serveFlags, v *viper.Viper) error {
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to configuration file (YAML format)")
	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to a dotenv file (default .env when present)")
	cmd.Flags().String("transport", config.TransportStdio,
		fmt.Sprintf("Transport to serve MCP over (%s or %s)", config.TransportStdio, config.TransportHTTP))
	cmd.Flags().String("address", config.DefaultAddress, "Address to listen on with the http transport")

	if err := v.BindPFlag(config.KeyTransport, cmd.Flags().Lookup("transport")); err != nil {
		return fmt.Errorf("failed to bind transport flag: %w", err)
	}
	if err := v.BindPFlag(config.KeyAddress, cmd.Flags().Lookup("address")); err != nil {
		return fmt.Errorf("failed to bind address flag: %w", err)
	}
	return nil
}

func loadConfig(flags *serveFlags, v *viper.Viper) (*config.Config, error) {
	opts := []config.Option{config.WithViper(v)}
	if flags.configPath != "" {
		opts = append(opts, config.WithConfigPath(flags.configPath))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, flags *serveFlags, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(flags, v)
	if err != nil {
		return err
	}
	slog.Info("Loaded configuration",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"transport", cfg.Transport)

	if !cfg.HasAPIKey() {
		slog.Warn("No Pyxis API key configured, tool calls will fail until it is set",
			"env", config.EnvName(config.KeyAPIKey))
	}

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithDefaultServiceVersion(versions.GetVersionInfo().Version),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	srv, err := mcpserver.New(
		[]tools.Interface{tools.New(newClientFactory(cfg, tel.Tracer(pyxis.TracerName)))},
		mcpserver.WithTracerProvider(tel.TracerProvider()),
		mcpserver.WithMeterProvider(tel.MeterProvider()),
		mcpserver.WithMetricsHandler(tel.MetricsHandler()),
	)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	switch cfg.Transport {
	case config.TransportHTTP:
		return srv.ServeHTTP(ctx, cfg.Address)
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			slog.Warn("Standard input is a terminal, the stdio transport expects JSON-RPC messages from an MCP client")
		}
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}

// newClientFactory builds Pyxis clients from cfg. A key missing at startup is
// looked up again in the environment on every attempt.
func newClientFactory(cfg *config.Config, tracer trace.Tracer) tools.ClientFactory {
	return func() (pyxis.Client, error) {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(config.EnvName(config.KeyAPIKey))
		}

		client, err := pyxis.NewClient(
			pyxis.WithAPIKey(apiKey),
			pyxis.WithBaseURL(cfg.BaseURL),
			pyxis.WithTimeout(cfg.Timeout),
			pyxis.WithRequestsPerSecond(cfg.RequestsPerSecond, cfg.Burst),
			pyxis.WithTracer(tracer),
		)
		if err != nil {
			return nil, err
		}
		slog.Debug("Created Pyxis client", "base_url", cfg.BaseURL)
		return client, nil
	}
}
