package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ventanita/internal/config"
	"ventanita/internal/logger"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "ventanita",
	Short: "Content core of the Ventanita bus travel site",
	Long: `Ventanita manages the page tree of the bus travel site: cities, stations,
routes, partners and blog posts, their block content, and the schema.org
structured data embedded in every page.

Quick start:
  ventanita import ./fixtures     # Load a page tree from JSON
  ventanita serve                 # MCP server on stdin/stdout
  ventanita serve --http          # MCP, metrics and read API over HTTP

Content:
  ventanita validate faq faq.json
  ventanita structured-data <page-id>
  ventanita publish-scheduled`,
	SilenceUsage: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "ventanita.yaml", "config file path")
}

// bootstrap loads configuration and builds the app. The caller owns the
// returned app and must call Shutdown.
func bootstrap(ctx context.Context) (*App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}
	a, err := New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("error initializing: %w", err)
	}
	return a, nil
}
