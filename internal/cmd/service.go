package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var serviceCmd = &cobra.Command{
	Use:     "service",
	Aliases: []string{"services"},
	Short:   "Manage services of the active company",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// serviceListCmd lists the company's services
var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		services, err := app.Client.ListServices(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		if len(services) == 0 {
			fmt.Println("No services found.")
			return nil
		}

		rows := make([][]string, 0, len(services))
		for _, s := range services {
			active := "no"
			if s.Active {
				active = "yes"
			}
			rows = append(rows, []string{
				s.ID,
				s.Name,
				fmt.Sprintf("%d min", s.Duration),
				fmt.Sprintf("%.2f", s.Price),
				active,
			})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "NAME", "DURATION", "PRICE", "ACTIVE"}, rows))
		return nil
	},
}

// serviceCreateCmd creates a service
var serviceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a service",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		durationStr, _ := cmd.Flags().GetString("duration")
		duration, err := strconv.Atoi(durationStr)
		if durationStr == "" || err != nil || duration <= 0 {
			return fmt.Errorf("--duration must be a positive number of minutes")
		}
		price, _ := cmd.Flags().GetFloat64("price")

		service, err := app.Client.CreateService(cmd.Context(), companyID, &api.Service{
			Name:     name,
			Duration: duration,
			Price:    price,
			Active:   true,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Service created"))
		fmt.Printf("ID: %s\n", service.ID)
		return nil
	},
}

func init() {
	serviceCmd.AddCommand(serviceListCmd)
	serviceCmd.AddCommand(serviceCreateCmd)

	serviceCreateCmd.Flags().String("name", "", "Service name (required)")
	serviceCreateCmd.Flags().String("duration", "", "Duration in minutes (required)")
	serviceCreateCmd.Flags().Float64("price", 0, "Price")

	rootCmd.AddCommand(serviceCmd)
}
