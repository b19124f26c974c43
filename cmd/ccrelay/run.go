package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shunirr/cc-glm/pkg/config"
	"github.com/shunirr/cc-glm/pkg/proxy"
	"github.com/shunirr/cc-glm/pkg/routing"
	"github.com/shunirr/cc-glm/pkg/sigstore"
	"github.com/shunirr/cc-glm/pkg/telemetry/logging"
	"github.com/shunirr/cc-glm/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the proxy in the foreground",
	Long: `Run the proxy in the foreground, bound to the configured listen address.

This is the command the singleton controller spawns as a detached child for
"ccrelay start"; it is also the natural way to run the proxy under a process
supervisor that already provides its own singleton guarantee.

Examples:
  # Start with the default config
  ccrelay run

  # Start with a custom config
  ccrelay run --config /etc/ccrelay/config.yaml

  # Override the listen address
  ccrelay run --listen 127.0.0.1:9090

  # Validate config without starting the server
  ccrelay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen host:port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if runFlags.listenAddress != "" {
		host, portStr, err := net.SplitHostPort(runFlags.listenAddress)
		if err != nil {
			return fmt.Errorf("invalid --listen value: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --listen port: %w", err)
		}
		cfg.Proxy.Host = host
		cfg.Proxy.Port = port
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	logger, closer, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	store := sigstore.New(cfg.Signature.MaxSize)
	selector := routing.NewSelector(cfg.Routing, cfg.Upstream)
	collector := metrics.NewCollector()

	handler := proxy.NewHandler(selector, store, collector, logger)
	server := proxy.NewServer(cfg.Proxy, handler, logger)

	if cfg.Metrics.Enabled {
		server.MountMetrics(cfg.Metrics.Path, collector.Handler())
	}
	server.MountHealth("/healthz")

	watcher, err := config.NewWatcher(cfgFile, cfg)
	if err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	} else {
		watcher.OnReload = func(reloaded *config.Config) {
			logger.Info("reloaded configuration", "rules", len(reloaded.Routing.Rules))
			selector.Reload(reloaded.Routing, reloaded.Upstream)
		}
		watcher.OnError = func(err error) {
			logger.Warn("config reload skipped", "error", err)
		}
		defer watcher.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(cfg.Upstream, cfg.Routing); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Lifecycle.StopGrace())
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return err
		}
		logger.Info("server stopped")
		return nil
	}
}
