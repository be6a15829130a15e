// Package commands contains the subcommands of the admin CLI.
package commands

import (
	"context"
	"fmt"

	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/services"
	contextutils "feedbackhub/internal/utils"

	"github.com/spf13/cobra"
)

// SeedCommands returns the seed data management commands
func SeedCommands(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed data commands",
		Long: `Seed data commands for the feedback service.

Available commands:
  validate - Validate a seed file without loading it
  show     - Show the fixtures a seed file would load`,
	}

	seedCmd.AddCommand(validateSeedCmd(cfg, logger))
	seedCmd.AddCommand(showSeedCmd(cfg, logger))

	return seedCmd
}

func validateSeedCmd(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a seed file",
		Long:  `Validate a seed file against the seed schema. Without an argument, validates the embedded default seed.`,
		RunE:  runValidateSeed(cfg, logger),
	}
}

func showSeedCmd(cfg *config.Config, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Show seed fixtures",
		Long:  `Show the accounts and feedback records a seed file would load. Without an argument, shows the embedded default seed.`,
		RunE:  runShowSeed(cfg, logger),
	}
}

func loadSeed(cfg *config.Config, logger *observability.Logger, args []string) (*services.SeedData, error) {
	identity := services.NewIdentityService(cfg, logger)
	feedback := services.NewFeedbackService(cfg, logger)
	seedService := services.NewSeedService(cfg, logger, identity, feedback)

	if len(args) > 0 {
		return seedService.LoadSeedFile(args[0])
	}
	return services.DefaultSeed()
}

func runValidateSeed(cfg *config.Config, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		data, err := loadSeed(cfg, logger, args)
		if err != nil {
			logger.Error(ctx, "Seed validation failed", err, nil)
			return contextutils.WrapError(err, "seed validation failed")
		}

		fmt.Printf("Seed data is valid: %d accounts, %d feedback records\n", len(data.Accounts), len(data.Feedback))
		return nil
	}
}

func runShowSeed(cfg *config.Config, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		data, err := loadSeed(cfg, logger, args)
		if err != nil {
			logger.Error(ctx, "Failed to load seed data", err, nil)
			return contextutils.WrapError(err, "failed to load seed data")
		}

		fmt.Printf("%-12s %-20s %-30s %-8s %-20s\n", "ID", "Username", "Email", "Role", "Organization")
		for _, a := range data.Accounts {
			org := a.Organization
			if org == "" {
				org = "-"
			}
			fmt.Printf("%-12s %-20s %-30s %-8s %-20s\n", a.ID, a.Username, a.Email, a.Role, org)
		}

		fmt.Println()
		fmt.Printf("%-8s %-20s %-20s %-12s %-10s\n", "ID", "Entity", "Organization", "Category", "Status")
		for _, f := range data.Feedback {
			status := f.Status
			if status == "" {
				status = "pending"
			}
			fmt.Printf("%-8s %-20s %-20s %-12s %-10s\n", f.ID, f.Entity, f.Organization, f.Category, status)
		}

		return nil
	}
}
