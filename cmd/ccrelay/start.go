package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shunirr/cc-glm/pkg/config"
	"github.com/shunirr/cc-glm/pkg/lifecycle"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the proxy as a detached background process",
	Long: `Start the proxy as a detached background process, tracked by a PID file
under the configured state directory.

If an instance is already running and owns the configured port, start is a
no-op: it returns success without spawning a second process.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	controller := &lifecycle.Controller{
		StateDir: cfg.Lifecycle.StateDir,
		Addr:     cfg.Proxy.Addr(),
		Port:     cfg.Proxy.Port,
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own executable path: %w", err)
	}

	spawn := func() (*exec.Cmd, error) {
		logFile, err := os.OpenFile(filepath.Join(cfg.Lifecycle.StateDir, "proxy.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open proxy log: %w", err)
		}
		defer logFile.Close()

		child := exec.Command(self, "run", "--config", cfgFile)
		child.Stdout = logFile
		child.Stderr = logFile
		child.Stdin = nil
		// Setsid detaches the child into its own session so it survives
		// this CLI invocation exiting, per spec.md §4.9 step 6.
		child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
		if err := child.Start(); err != nil {
			return nil, err
		}
		return child, nil
	}

	if err := controller.Start(spawn, cfg.Lifecycle.StartWait()); err != nil {
		return fmt.Errorf("failed to start proxy: %w", err)
	}

	fmt.Printf("ccrelay listening on %s\n", cfg.Proxy.Addr())
	return nil
}
