package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/tui"
)

var whatsappCmd = &cobra.Command{
	Use:   "whatsapp",
	Short: "Manage the WhatsApp channel of the active company",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// whatsappConnectCmd starts a pairing session
var whatsappConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Start WhatsApp pairing",
	Long: `Start a WhatsApp pairing session for the active company.

When the channel is not yet connected the backend returns a QR code to
scan with the WhatsApp app.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		session, err := app.Client.ConnectWhatsapp(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		fmt.Printf("Status: %s\n", session.Status)
		if session.QRCode != "" {
			fmt.Println("Scan this code with the WhatsApp app:")
			fmt.Println(session.QRCode)
		}
		if session.PhoneNumber != "" {
			fmt.Printf("Connected number: %s\n", session.PhoneNumber)
		}
		return nil
	},
}

// whatsappStatusCmd shows the channel state
var whatsappStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show WhatsApp channel status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		session, err := app.Client.WhatsappStatus(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		if session.Status == "connected" {
			fmt.Println(tui.Success("Connected"))
		} else {
			fmt.Printf("Status: %s\n", session.Status)
		}
		if session.PhoneNumber != "" {
			fmt.Printf("Number: %s\n", session.PhoneNumber)
		}
		return nil
	},
}

func init() {
	whatsappCmd.AddCommand(whatsappConnectCmd)
	whatsappCmd.AddCommand(whatsappStatusCmd)

	rootCmd.AddCommand(whatsappCmd)
}
