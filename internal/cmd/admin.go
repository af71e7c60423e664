package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/session"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Platform back-office (super admins only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// requireSuperAdmin gates the back-office locally; the backend enforces it
// anyway, this just gives a friendlier message.
func requireSuperAdmin(app *App) error {
	if err := app.requireAuth(); err != nil {
		return err
	}
	if app.Session.GlobalRole() != session.GlobalRoleSuperAdmin {
		return fmt.Errorf("the admin back-office requires the super_admin role")
	}
	return nil
}

// adminCompanyCmd manages tenants
var adminCompanyCmd = &cobra.Command{
	Use:     "company",
	Aliases: []string{"companies"},
	Short:   "Manage tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminCompanyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireSuperAdmin(app); err != nil {
			return err
		}

		companies, err := app.Client.ListAdminCompanies(cmd.Context())
		if err != nil {
			return err
		}

		if len(companies) == 0 {
			fmt.Println("No tenants found.")
			return nil
		}

		rows := make([][]string, 0, len(companies))
		for _, c := range companies {
			rows = append(rows, []string{c.ID, c.Name, c.Status, c.Plan, strconv.Itoa(c.Appointments)})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "NAME", "STATUS", "PLAN", "APPOINTMENTS"}, rows))
		return nil
	},
}

var adminCompanyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireSuperAdmin(app); err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		email, _ := cmd.Flags().GetString("email")
		plan, _ := cmd.Flags().GetString("plan")

		company, err := app.Client.CreateAdminCompany(cmd.Context(), &api.AdminCompany{
			Name:  name,
			Email: email,
			Plan:  plan,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Tenant created"))
		fmt.Printf("ID: %s\n", company.ID)
		return nil
	},
}

// adminPlanCmd manages subscription plans
var adminPlanCmd = &cobra.Command{
	Use:     "plan",
	Aliases: []string{"plans"},
	Short:   "Manage subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminPlanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireSuperAdmin(app); err != nil {
			return err
		}

		plans, err := app.Client.ListAdminPlans(cmd.Context())
		if err != nil {
			return err
		}

		if len(plans) == 0 {
			fmt.Println("No plans found.")
			return nil
		}

		rows := make([][]string, 0, len(plans))
		for _, p := range plans {
			rows = append(rows, []string{
				p.ID,
				p.Name,
				fmt.Sprintf("%.2f", p.Price),
				strconv.Itoa(p.AppointmentLimit),
				strconv.Itoa(p.NotificationLimit),
			})
		}
		fmt.Print(tui.RenderTable([]string{"ID", "NAME", "PRICE", "APPT LIMIT", "NOTIF LIMIT"}, rows))
		return nil
	},
}

var adminPlanCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a subscription plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireSuperAdmin(app); err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		price, _ := cmd.Flags().GetFloat64("price")
		appointmentLimit, _ := cmd.Flags().GetInt("appointment-limit")
		notificationLimit, _ := cmd.Flags().GetInt("notification-limit")

		plan, err := app.Client.CreateAdminPlan(cmd.Context(), &api.AdminPlan{
			Name:              name,
			Price:             price,
			AppointmentLimit:  appointmentLimit,
			NotificationLimit: notificationLimit,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Plan created"))
		fmt.Printf("ID: %s\n", plan.ID)
		return nil
	},
}

// adminDashboardCmd shows the platform-wide counters
var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show platform-wide counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := requireSuperAdmin(app); err != nil {
			return err
		}

		dashboard, err := app.Client.GetAdminDashboard(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Tenants:             %d (%d active)\n", dashboard.TotalCompanies, dashboard.ActiveCompanies)
		fmt.Printf("Appointments (month): %d\n", dashboard.AppointmentsMonth)
		fmt.Printf("Messages sent:       %d\n", dashboard.MessagesSent)
		if dashboard.CompanyGrowth != 0 {
			fmt.Printf("Tenant growth:       %d%%\n", dashboard.CompanyGrowth)
		}
		return nil
	},
}

func init() {
	adminCompanyCmd.AddCommand(adminCompanyListCmd)
	adminCompanyCmd.AddCommand(adminCompanyCreateCmd)
	adminPlanCmd.AddCommand(adminPlanListCmd)
	adminPlanCmd.AddCommand(adminPlanCreateCmd)

	adminCmd.AddCommand(adminCompanyCmd)
	adminCmd.AddCommand(adminPlanCmd)
	adminCmd.AddCommand(adminDashboardCmd)

	adminCompanyCreateCmd.Flags().String("name", "", "Tenant name (required)")
	adminCompanyCreateCmd.Flags().String("email", "", "Owner email")
	adminCompanyCreateCmd.Flags().String("plan", "", "Plan id")

	adminPlanCreateCmd.Flags().String("name", "", "Plan name (required)")
	adminPlanCreateCmd.Flags().Float64("price", 0, "Monthly price")
	adminPlanCreateCmd.Flags().Int("appointment-limit", 0, "Appointment limit per month")
	adminPlanCreateCmd.Flags().Int("notification-limit", 0, "Notification limit per month")

	rootCmd.AddCommand(adminCmd)
}
