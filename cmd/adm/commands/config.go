package commands

import (
	"fmt"

	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"

	"github.com/spf13/cobra"
)

// ConfigCommands returns the configuration inspection commands
func ConfigCommands(cfg *config.Config, _ *observability.Logger) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "contacts",
		Short: "Show the organization contact directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			orgs := cfg.KnownOrganizations()
			if len(orgs) == 0 {
				fmt.Println("No organization contacts configured")
			}
			for _, org := range orgs {
				fmt.Printf("%-30s %s\n", org, cfg.ContactForOrganization(org))
			}
			fmt.Printf("%-30s %s\n", "(default)", cfg.ContactForOrganization(""))
			return nil
		},
	})

	return configCmd
}
