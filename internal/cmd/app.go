package cmd

import (
	"github.com/spf13/cobra"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/config"
	"github.com/reserveja/reserveja-cli/internal/errors"
	"github.com/reserveja/reserveja-cli/internal/log"
	"github.com/reserveja/reserveja-cli/internal/session"
	"github.com/reserveja/reserveja-cli/internal/tui"
)

// App bundles the shared pieces every command needs: configuration, the one
// API client instance, and the session manager observing it.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Client  *api.Client
	Session *session.Manager

	noInput bool
}

// newApp wires configuration, logging, the API client and a restored
// session. Commands call this at the top of their RunE.
func newApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	noInput, _ := cmd.Flags().GetBool("no-input")

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: log.OutputStderr(),
	})
	log.SetDefaultLogger(logger)

	client := api.NewClient(cfg.APIURL)
	client.SetLogger(logger)

	manager := session.NewManager(client, session.NewFileStore(config.SessionPath()), logger)
	manager.Restore()

	return &App{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Session: manager,
		noInput: noInput,
	}, nil
}

// canPrompt reports whether interactive prompts are allowed right now.
func (a *App) canPrompt() bool {
	return !a.noInput && tui.ShouldPrompt()
}

// requireAuth fails when no authenticated session is held.
func (a *App) requireAuth() error {
	if !a.Session.IsAuthenticated() {
		return errors.NewAuthRequiredError()
	}
	return nil
}

// requireCompany fails without an authenticated session and an active company.
func (a *App) requireCompany() (string, error) {
	if err := a.requireAuth(); err != nil {
		return "", err
	}
	companyID := a.Session.CompanyID()
	if companyID == "" {
		return "", errors.NewNoCompanyError()
	}
	return companyID, nil
}
