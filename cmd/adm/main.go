// Package main provides the main entry point for the feedbackhub admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"feedbackhub/cmd/adm/commands"
	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for the admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "feedbackhub-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if sdkTP, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := sdkTP.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "FeedbackHub Administration Tool",
		Long: `FeedbackHub Administration Tool

A CLI tool for administering the feedback service.
Provides commands for inspecting and validating seed data and configuration.`,

		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.SeedCommands(cfg, logger))
	rootCmd.AddCommand(commands.ConfigCommands(cfg, logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
