package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reserveja/reserveja-cli/internal/errors"
)

// DefaultAPIURL is used when no base URL is configured anywhere.
const DefaultAPIURL = "http://localhost:3000"

// SessionFileName is the durable key the session snapshot lives under.
const SessionFileName = "auth.json"

const configFileName = "config.yaml"

// Config holds the CLI configuration.
// Precedence, lowest to highest: defaults, ~/.reserveja/config.yaml,
// environment variables.
type Config struct {
	// APIURL is the base URL for all backend requests
	APIURL string `yaml:"api_url"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of text, json
	LogFormat string `yaml:"log_format"`
}

// Home returns the configuration directory, honoring RESERVEJA_HOME.
func Home() string {
	if home := os.Getenv("RESERVEJA_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		// Fall back to a project-local directory, same as a fresh checkout.
		return ".reserveja"
	}
	return filepath.Join(userHome, ".reserveja")
}

// SessionPath returns the path of the persisted session snapshot.
func SessionPath() string {
	return filepath.Join(Home(), SessionFileName)
}

// Load builds the effective configuration.
// A missing config file is fine; an unparseable one is an error.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:    DefaultAPIURL,
		LogLevel:  "warn",
		LogFormat: "text",
	}

	path := filepath.Join(Home(), configFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileUnmarshal, "failed to parse config file: "+path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read config file: "+path, err)
	}

	if url := os.Getenv("RESERVEJA_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if level := os.Getenv("RESERVEJA_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	return cfg, nil
}
