package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"clients"},
	Short:   "Manage clients of the active company",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// clientListCmd lists clients, optionally filtered by a search term
var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		search, _ := cmd.Flags().GetString("search")
		clients, err := app.Client.ListClients(cmd.Context(), companyID, search)
		if err != nil {
			return err
		}

		if len(clients) == 0 {
			fmt.Println("No clients found.")
			return nil
		}

		rows := make([][]string, 0, len(clients))
		for _, c := range clients {
			rows = append(rows, []string{c.ID, c.Name, c.Phone, c.Email, strconv.Itoa(c.TotalAppointments)})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "NAME", "PHONE", "EMAIL", "APPOINTMENTS"}, rows))
		return nil
	},
}

// clientCreateCmd creates a client record
var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a client",
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
		phone, _ := cmd.Flags().GetString("phone")
		email, _ := cmd.Flags().GetString("email")

		client, err := app.Client.CreateClient(cmd.Context(), companyID, &api.CompanyClient{
			Name:  name,
			Phone: phone,
			Email: email,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Client created"))
		fmt.Printf("ID: %s\n", client.ID)
		return nil
	},
}

func init() {
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientCreateCmd)

	clientListCmd.Flags().String("search", "", "Filter by name or phone")

	clientCreateCmd.Flags().String("name", "", "Client name (required)")
	clientCreateCmd.Flags().String("phone", "", "Phone number")
	clientCreateCmd.Flags().String("email", "", "Email address")

	rootCmd.AddCommand(clientCmd)
}
