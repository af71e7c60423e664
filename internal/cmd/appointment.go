package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var appointmentCmd = &cobra.Command{
	Use:     "appointment",
	Aliases: []string{"appointments"},
	Short:   "Manage appointments of the active company",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// appointmentListCmd lists appointments, optionally filtered
var appointmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	Long: `List appointments of the active company.

Examples:
  reserveja appointment list
  reserveja appointment list --date 2026-09-01 --status confirmed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		date, _ := cmd.Flags().GetString("date")
		status, _ := cmd.Flags().GetString("status")
		professionalID, _ := cmd.Flags().GetString("professional")
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")

		appointments, err := app.Client.ListAppointments(cmd.Context(), companyID, api.AppointmentFilter{
			Date:           date,
			Status:         status,
			ProfessionalID: professionalID,
			Page:           page,
			PerPage:        perPage,
		})
		if err != nil {
			return err
		}

		if len(appointments) == 0 {
			fmt.Println("No appointments found.")
			return nil
		}

		rows := make([][]string, 0, len(appointments))
		for _, a := range appointments {
			rows = append(rows, []string{a.ID, a.Date, a.Time, a.ClientName, a.ServiceName, a.ProfessionalName, a.Status})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "DATE", "TIME", "CLIENT", "SERVICE", "PROFESSIONAL", "STATUS"}, rows))
		return nil
	},
}

// appointmentCreateCmd creates an appointment
var appointmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an appointment",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			return fmt.Errorf("--date is required")
		}
		clientID, _ := cmd.Flags().GetString("client")
		serviceID, _ := cmd.Flags().GetString("service")
		professionalID, _ := cmd.Flags().GetString("professional")
		timeOfDay, _ := cmd.Flags().GetString("time")
		notes, _ := cmd.Flags().GetString("notes")

		appointment, err := app.Client.CreateAppointment(cmd.Context(), companyID, &api.Appointment{
			ClientID:       clientID,
			ServiceID:      serviceID,
			ProfessionalID: professionalID,
			Date:           date,
			Time:           timeOfDay,
			Notes:          notes,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Appointment created"))
		fmt.Printf("ID: %s (%s %s, status %s)\n", appointment.ID, appointment.Date, appointment.Time, appointment.Status)
		return nil
	},
}

// appointmentStatusCmd transitions an appointment to a new status
var appointmentStatusCmd = &cobra.Command{
	Use:   "status <appointment-id> <status>",
	Short: "Update an appointment's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		appointment, err := app.Client.UpdateAppointmentStatus(cmd.Context(), companyID, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Appointment %s is now %s\n", appointment.ID, appointment.Status)
		return nil
	},
}

// appointmentConfirmCmd sends the confirmation message for an appointment
var appointmentConfirmCmd = &cobra.Command{
	Use:   "confirm <appointment-id>",
	Short: "Send the confirmation message for an appointment",
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

		if err := app.Client.SendAppointmentConfirmation(cmd.Context(), companyID, args[0]); err != nil {
			return err
		}

		fmt.Println(tui.Success("Confirmation sent"))
		return nil
	},
}

func init() {
	appointmentCmd.AddCommand(appointmentListCmd)
	appointmentCmd.AddCommand(appointmentCreateCmd)
	appointmentCmd.AddCommand(appointmentStatusCmd)
	appointmentCmd.AddCommand(appointmentConfirmCmd)

	appointmentListCmd.Flags().String("date", "", "Filter by date (YYYY-MM-DD)")
	appointmentListCmd.Flags().String("status", "", "Filter by status")
	appointmentListCmd.Flags().String("professional", "", "Filter by professional id")
	appointmentListCmd.Flags().Int("page", 0, "Page number")
	appointmentListCmd.Flags().Int("per-page", 0, "Page size")

	appointmentCreateCmd.Flags().String("client", "", "Client id")
	appointmentCreateCmd.Flags().String("service", "", "Service id")
	appointmentCreateCmd.Flags().String("professional", "", "Professional id")
	appointmentCreateCmd.Flags().String("date", "", "Date (YYYY-MM-DD, required)")
	appointmentCreateCmd.Flags().String("time", "", "Time (HH:MM)")
	appointmentCreateCmd.Flags().String("notes", "", "Notes")

	rootCmd.AddCommand(appointmentCmd)
}
