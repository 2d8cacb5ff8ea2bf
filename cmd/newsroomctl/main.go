// Package main provides newsroomctl, the operator CLI for headless bulk
// article imports against the news API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/pkg/config"
	"github.com/noah-isme/newsroom-console/pkg/logger"
)

var (
	Version   = "1.0.0"
	BuildTime = "dev"
)

const appName = "newsroomctl"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	upstream string
	logLevel string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Newsroom console operator tool",
		Long:          "newsroomctl runs bulk article imports against the news API using the same session and import pipeline as the console gateway.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.upstream, "upstream", "", "News API base URL (defaults to UPSTREAM_BASE_URL)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(templateCmd())
	cmd.AddCommand(importCmd(flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	return cmd
}

// setup loads the gateway configuration and applies CLI overrides.
func setup(flags *globalFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.upstream != "" {
		cfg.Upstream.BaseURL = flags.upstream
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, nil, fmt.Errorf("no upstream configured: pass --upstream or set UPSTREAM_BASE_URL")
	}
	cfg.Log.Level = flags.logLevel
	cfg.Log.Format = "console"

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logr, nil
}
