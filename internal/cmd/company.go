package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/tui"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage the active company context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// companyListCmd lists the user's company memberships
var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your company memberships",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		companies := app.Session.Companies()
		if len(companies) == 0 {
			fmt.Println("You have no company memberships.")
			return nil
		}

		active := app.Session.CompanyID()
		rows := make([][]string, 0, len(companies))
		for _, company := range companies {
			marker := ""
			if company.ID == active {
				marker = "*"
			}
			rows = append(rows, []string{marker, company.ID, company.Name, string(company.Role)})
		}

		fmt.Print(tui.RenderTable([]string{"", "ID", "NAME", "ROLE"}, rows))
		return nil
	},
}

// companyUseCmd switches the active company
var companyUseCmd = &cobra.Command{
	Use:   "use <company-id>",
	Short: "Select the active company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		companyID := args[0]
		membership := app.Session.User().Membership(companyID)
		if membership == nil {
			return fmt.Errorf("you are not a member of company %q; run 'reserveja company list'", companyID)
		}

		app.Session.SetActiveCompany(companyID)
		fmt.Printf("Active company: %s (%s)\n", membership.Name, membership.Role)
		return nil
	},
}

// companyDashboardCmd shows the active company's dashboard counters
var companyDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the active company's dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		dashboard, err := app.Client.GetDashboard(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		fmt.Printf("Appointments today: %d\n", dashboard.AppointmentsToday)
		fmt.Printf("Appointments week:  %d\n", dashboard.AppointmentsWeek)
		fmt.Printf("Show-up rate:       %.0f%%\n", dashboard.ShowUpRate)
		fmt.Printf("Clients:            %d\n", dashboard.TotalClients)
		fmt.Printf("Active services:    %d\n", dashboard.ActiveServices)

		if len(dashboard.NextAppointments) > 0 {
			fmt.Println()
			rows := make([][]string, 0, len(dashboard.NextAppointments))
			for _, a := range dashboard.NextAppointments {
				rows = append(rows, []string{a.Time, a.ClientName, a.ServiceName, a.Status})
			}
			fmt.Print(tui.RenderTable([]string{"TIME", "CLIENT", "SERVICE", "STATUS"}, rows))
		}
		return nil
	},
}

// companyReportCmd shows the revenue and performance report
var companyReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the active company's performance report",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		companyID, err := app.requireCompany()
		if err != nil {
			return err
		}

		report, err := app.Client.GetReport(cmd.Context(), companyID)
		if err != nil {
			return err
		}

		if totals := report.Totals; totals != nil {
			fmt.Printf("Revenue:        %.2f\n", totals.TotalRevenue)
			fmt.Printf("Appointments:   %d\n", totals.TotalAppointments)
			fmt.Printf("Average ticket: %.2f\n", totals.AverageTicket)
			fmt.Println()
		}

		if len(report.TopServices) > 0 {
			rows := make([][]string, 0, len(report.TopServices))
			for _, item := range report.TopServices {
				rows = append(rows, []string{item.Name, fmt.Sprintf("%d", item.Total), fmt.Sprintf("%.2f", item.Revenue)})
			}
			fmt.Println("Top services:")
			fmt.Print(tui.RenderTable([]string{"SERVICE", "APPOINTMENTS", "REVENUE"}, rows))
		}

		if len(report.Professionals) > 0 {
			rows := make([][]string, 0, len(report.Professionals))
			for _, item := range report.Professionals {
				rows = append(rows, []string{item.Name, fmt.Sprintf("%d", item.Total), fmt.Sprintf("%.2f", item.Revenue)})
			}
			fmt.Println("Professionals:")
			fmt.Print(tui.RenderTable([]string{"PROFESSIONAL", "APPOINTMENTS", "REVENUE"}, rows))
		}
		return nil
	},
}

func init() {
	companyCmd.AddCommand(companyListCmd)
	companyCmd.AddCommand(companyUseCmd)
	companyCmd.AddCommand(companyDashboardCmd)
	companyCmd.AddCommand(companyReportCmd)

	rootCmd.AddCommand(companyCmd)
}
