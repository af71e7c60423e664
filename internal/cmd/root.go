package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reserveja",
	Short: "ReserveJá scheduling platform console",
	Long: `reserveja is the command-line console for the ReserveJá multi-tenant
scheduling platform. It manages your authenticated session, the active
company context, and the day-to-day operator resources: appointments,
clients, services and WhatsApp message templates. Super admins also get
the platform back-office (tenants and plans).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellation context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the ReserveJá API (overrides config and RESERVEJA_API_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-input", false, "Never prompt interactively")
}
