package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearthline/cligate/pkg/cli"
	"github.com/hearthline/cligate/pkg/config"
	"github.com/hearthline/cligate/pkg/health"
	"github.com/hearthline/cligate/pkg/jobmanager"
	"github.com/hearthline/cligate/pkg/provider"
	"github.com/hearthline/cligate/pkg/server"
	"github.com/hearthline/cligate/pkg/telemetry/logging"
	"github.com/hearthline/cligate/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the cligate gateway server",
	Long: `Start the cligate gateway server with the specified configuration.

The server listens on the configured address, dispatches incoming
OpenAI-style chat-completions requests to CLI model providers through the
fallback-chain dispatcher, and exposes the admin and metrics surfaces.

Examples:
  # Start with default config
  cligate run

  # Start with custom config
  cligate run --config /etc/cligate/config.yaml

  # Override listen address
  cligate run --listen 0.0.0.0:8080

  # Validate config without starting the server
  cligate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}

	logger, err := setupLogging(cfg.Logging)
	if err != nil {
		return cli.NewConfigError("logging", fmt.Sprintf("invalid logging configuration: %v", err))
	}
	defer logger.Shutdown()

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	printBanner(cfg)

	slog.Info("building provider registry", "providers", len(cfg.Providers))
	watcher, err := config.NewRegistryWatcher(cfgFile)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("invalid provider configuration: %w", err))
	}
	defer watcher.Close()
	registry := watcher.Registry()

	tracker := health.NewTracker()
	jobs := jobmanager.NewManager(nil)
	defer jobs.Stop()
	dispatcher := provider.NewDispatcher(registry, tracker)
	watcher.OnChange(dispatcher.UpdateRegistry)

	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
	tracker.SetMetricsSink(collector)
	jobs.SetMetricsSink(collector)

	srv := server.NewServer(cfg.Server, server.Deps{
		Registry:   registry,
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Jobs:       jobs,
		Metrics:    collector,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("gateway listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("chat completions: http://%s/v1/chat/completions\n", cfg.Server.ListenAddress)
	fmt.Printf("metrics:          http://%s/metrics\n", cfg.Server.ListenAddress)
	fmt.Println("\npress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nreceived signal %s, shutting down gracefully...\n", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("gateway stopped")
		return nil
	}
}

func setupLogging(cfg config.LoggingConfig) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		RedactPII: true,
		Writer:    os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Slog())
	return logger, nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("cligate v%s\n", Version)
	fmt.Printf("loading configuration from: %s\n", cfgFile)
	fmt.Println("configuration loaded")
	fmt.Printf("providers configured: %d\n", len(cfg.Providers))
}
