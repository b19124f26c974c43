package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunirr/cc-glm/pkg/config"
	"github.com/shunirr/cc-glm/pkg/lifecycle"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a proxy instance is running",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pidPath := filepath.Join(cfg.Lifecycle.StateDir, "proxy.pid")
	pid, err := lifecycle.ReadPID(pidPath)
	if err != nil {
		return fmt.Errorf("failed to read pid file: %w", err)
	}

	if pid == 0 || !lifecycle.IsPortListening(cfg.Proxy.Addr(), 200*time.Millisecond) {
		fmt.Println("ccrelay is not running")
		os.Exit(1)
	}

	fmt.Printf("ccrelay is running (pid %d, listening on %s)\n", pid, cfg.Proxy.Addr())

	if cfg.Metrics.Enabled {
		printRequestCounters(cfg.Proxy.Addr(), cfg.Metrics.Path)
	}
	return nil
}

// printRequestCounters best-effort scrapes the local /metrics endpoint for
// the ccrelay_requests_total family and prints each series verbatim. A
// scrape failure is silent: status still succeeded at reporting liveness.
func printRequestCounters(addr, path string) {
	resp, err := http.Get("http://" + addr + path)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "ccrelay_requests_total{") {
			fmt.Println("  " + line)
		}
	}
}
