package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Manage WhatsApp message templates of the active company",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// templateListCmd lists the company's message templates
var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List message templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		templates, err := app.Client.ListTemplates(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		if len(templates) == 0 {
			fmt.Println("No message templates found.")
			return nil
		}

		rows := make([][]string, 0, len(templates))
		for _, t := range templates {
			active := "no"
			if t.Active {
				active = "yes"
			}
			rows = append(rows, []string{t.ID, t.Type, t.Name, active})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "TYPE", "NAME", "ACTIVE"}, rows))
		return nil
	},
}

// templateCreateCmd creates a message template
var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a message template",
	Long: `Create a WhatsApp message template.

The message text may use placeholders filled at send time, e.g.
{cliente}, {servico}, {data}, {hora}.

Examples:
  reserveja template create --name "Lembrete" --type reminder \
    --message "Olá {cliente}, seu horário de {servico} é {data} às {hora}."`,
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
		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			return fmt.Errorf("--message is required")
		}
		templateType, _ := cmd.Flags().GetString("type")

		template, err := app.Client.CreateTemplate(cmd.Context(), companyID, &api.MessageTemplate{
			Name:    name,
			Type:    templateType,
			Message: message,
			Active:  true,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Template created"))
		fmt.Printf("ID: %s\n", template.ID)
		return nil
	},
}

// templateDeleteCmd removes a message template
var templateDeleteCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a message template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		if err := app.Client.DeleteTemplate(cmd.Context(), companyID, args[0]); err != nil {
			return err
		}

		fmt.Println("Template deleted.")
		return nil
	},
}

func init() {
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateDeleteCmd)

	templateCreateCmd.Flags().String("name", "", "Template name (required)")
	templateCreateCmd.Flags().String("type", "custom", "Template type (reminder, confirmation, custom)")
	templateCreateCmd.Flags().String("message", "", "Message text (required)")

	rootCmd.AddCommand(templateCmd)
}
