// Package main provides the CLI entry point for investigatorai, a
// multi-agent fraud investigation orchestrator.
//
// # Basic Usage
//
// Start the server:
//
//	investigatorai serve --config investigatorai.yaml
//
// Check cache occupancy:
//
//	investigatorai cache-stats --config investigatorai.yaml
//
// # Environment Variables
//
// Configuration can be overridden via environment variables; see
// internal/appconfig for the full list (INVESTIGATORAI_LLM_API_KEY,
// INVESTIGATORAI_LLM_MODEL, INVESTIGATORAI_ADDR, ...).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ovokpus/investigatorai/internal/observability"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := observability.NewLogger(observability.LogConfig{Output: os.Stderr})

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), "command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "investigatorai",
		Short:   "investigatorai - multi-agent fraud investigation orchestrator",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Long: `investigatorai dispatches a fixed roster of specialized LLM agents
(regulatory research, evidence collection, compliance check, report
generation) against a transaction and returns a consolidated fraud
investigation report.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildHealthCmd(),
		buildCacheStatsCmd(),
	)
	return rootCmd
}
