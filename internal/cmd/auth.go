package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/session"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
	Long: `Manage the authenticated session with the ReserveJá platform.

The session (user, tokens, active company) is stored under ~/.reserveja and
restored on every invocation; expired access tokens are refreshed
transparently.

Examples:
  reserveja auth login --email user@example.com
  reserveja auth status
  reserveja auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd handles user login
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the platform",
	Long: `Login to the ReserveJá platform with your email and password.

Missing flags are prompted for interactively when running in a terminal.

Examples:
  reserveja auth login --email user@example.com --password mypass
  reserveja auth login`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" && app.canPrompt() {
			email, err = tui.PromptForString(tui.Prompt{
				Message:     "Email",
				Placeholder: "user@example.com",
				Required:    true,
			})
			if err != nil {
				return err
			}
		}
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		if password == "" && app.canPrompt() {
			password, err = tui.PromptForString(tui.Prompt{
				Message:  "Password",
				Required: true,
				Secret:   true,
			})
			if err != nil {
				return err
			}
		}
		if password == "" {
			return fmt.Errorf("--password is required")
		}

		user, err := app.Session.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println(tui.Success("Login successful!"))
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)

		if user.GlobalRole == session.GlobalRoleSuperAdmin {
			fmt.Println(tui.Muted("Super-admin back-office available via 'reserveja admin'"))
		}
		if companyID := app.Session.CompanyID(); companyID != "" {
			fmt.Printf("Active company: %s (%s)\n", companyID, app.Session.CompanyRole())
		}

		return nil
	},
}

// authLogoutCmd handles user logout
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and remove the stored session",
	Long: `Logout from the ReserveJá platform.

The backend is asked to revoke the refresh token (best effort) and the
local session file is removed.

Examples:
  reserveja auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		if !app.Session.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}

		user := app.Session.User()
		app.Session.Logout(cmd.Context())

		if user != nil {
			fmt.Printf("Logged out: %s\n", user.Email)
		}
		fmt.Println("Use 'reserveja auth login' to login again.")

		return nil
	},
}

// authStatusCmd shows current auth status
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show the current authentication status, user information and the
active company context.

Examples:
  reserveja auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		if !app.Session.IsAuthenticated() {
			fmt.Println("Not logged in.")
			fmt.Println("Use 'reserveja auth login' to authenticate.")
			return nil
		}

		user := app.Session.User()
		fmt.Println(tui.Success("Logged in"))
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Name:    %s\n", user.Name)
		fmt.Printf("Email:   %s\n", user.Email)
		if user.GlobalRole != "" {
			fmt.Printf("Global role: %s\n", user.GlobalRole)
		}
		if companyID := app.Session.CompanyID(); companyID != "" {
			fmt.Printf("Active company: %s (%s)\n", companyID, app.Session.CompanyRole())
		} else {
			fmt.Println(tui.Muted("No active company"))
		}

		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password")

	rootCmd.AddCommand(authCmd)
}
