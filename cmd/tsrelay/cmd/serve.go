package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tsrelay/internal/config"
	internalhttp "github.com/jmylchreest/tsrelay/internal/http"
	"github.com/jmylchreest/tsrelay/internal/http/handlers"
	"github.com/jmylchreest/tsrelay/internal/observability"
	"github.com/jmylchreest/tsrelay/internal/relay"
	"github.com/jmylchreest/tsrelay/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tsrelay server",
	Long: `Start the tsrelay HTTP server.

The server provides:
- /s: the UDP-to-HTTP fan-out stream
- /si: an HTML status report
- /ss: an SVG per-PID rate plot
- /start_flow, /stop_flow: JSONP keepalive endpoints
- /healthz: a liveness probe`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "host to bind to")
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	serveCmd.Flags().String("log-format", "json", "log format (json, text)")
	serveCmd.Flags().Int("max-programs", 100, "maximum number of concurrently tracked UDP sources")
	serveCmd.Flags().Int("max-streams-per-program", 100, "maximum number of HTTP clients per UDP source")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("logging.level", serveCmd.Flags().Lookup("log-level"))
	mustBindPFlag("logging.format", serveCmd.Flags().Lookup("log-format"))
	mustBindPFlag("relay.max_programs", serveCmd.Flags().Lookup("max-programs"))
	mustBindPFlag("relay.max_streams_per_program", serveCmd.Flags().Lookup("max-streams-per-program"))
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	registry := relay.NewRegistry(cfg.Relay, observability.WithComponent(logger, "relay"))

	relayHandler := handlers.NewRelayHandler(registry, cfg.Relay, observability.WithComponent(logger, "http"), version.Version)

	server := internalhttp.NewServer(internalhttp.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)
	relayHandler.RegisterRoutes(server.Router())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("tsrelay serving",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("version", version.Version),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx := context.Background()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
	}

	registry.Shutdown(shutdownCtx)

	return nil
}
