package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunirr/cc-glm/pkg/config"
	"github.com/shunirr/cc-glm/pkg/lifecycle"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a detached proxy instance",
	Long: `Stop a detached proxy instance started with "ccrelay start".

Sends SIGTERM and waits up to the configured grace period before escalating
to SIGKILL. It refuses to signal a PID that no longer owns the configured
port, since the recorded PID may have been reused by an unrelated process.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	controller := &lifecycle.Controller{
		StateDir: cfg.Lifecycle.StateDir,
		Addr:     cfg.Proxy.Addr(),
		Port:     cfg.Proxy.Port,
	}

	if err := controller.Stop(cfg.Lifecycle.StopGrace()); err != nil {
		return fmt.Errorf("failed to stop proxy: %w", err)
	}

	fmt.Println("ccrelay stopped")
	return nil
}
