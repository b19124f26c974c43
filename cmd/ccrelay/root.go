package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ccrelay",
	Short: "Loopback reverse proxy fronting two Claude-wire-compatible upstreams",
	Long: `ccrelay is a loopback HTTP reverse proxy that sits in front of a reference
Claude API upstream and an alternate GLM-family upstream, routing requests by
model name and repairing "thinking" content blocks so either upstream can be
swapped in behind a single Claude-compatible client.

For more information, see the configuration reference shipped with this repo.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
