package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pulse console configuration.
type Config struct {
	// API is the remote catalog service.
	API APIConfig `yaml:"api"`

	// Session controls where the bearer token is persisted.
	Session SessionConfig `yaml:"session"`

	// UI preferences for the interactive console
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the REST transport client.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// SessionConfig configures the durable token storage.
type SessionConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`
	Watch   bool   `yaml:"watch"` // follow logins/logouts made by other processes
}

// UIConfig configures the terminal console.
type UIConfig struct {
	Theme         string `yaml:"theme"` // light, dark
	ConfirmDelete bool   `yaml:"confirm_delete"`
}

// Session storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ValidBackends lists all supported session storage backends.
var ValidBackends = []string{BackendFile, BackendSQLite, BackendMemory}

// DefaultBaseURL is the production catalog API.
const DefaultBaseURL = "https://pulse-technology-server.vercel.app/api"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   "30s",
			UserAgent: "pulse-admin/1.0",
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Path:    filepath.Join(dir, "session.json"),
			Watch:   true,
		},
		UI: UIConfig{
			Theme:         "light",
			ConfirmDelete: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			DebugMode:  false,
			File:       filepath.Join(dir, "logs", "pulse.log"),
			MaxSizeMB:  16,
			MaxBackups: 5,
		},
	}
}

// DefaultDir returns the per-user pulse directory (~/.pulse).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(home, ".pulse")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if the file doesn't exist yet
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PULSE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("PULSE_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}

	if v := os.Getenv("PULSE_SESSION_BACKEND"); v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PULSE_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}

	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if os.Getenv("PULSE_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}

	if os.Getenv("PULSE_DARK_MODE") == "1" {
		c.UI.Theme = "dark"
	}
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required (set it in the config file or PULSE_API_URL)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}

	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
		}
	}

	validBackend := false
	for _, b := range ValidBackends {
		if c.Session.Backend == b {
			validBackend = true
			break
		}
	}
	if !validBackend {
		return fmt.Errorf("invalid session backend: %s (valid: %v)", c.Session.Backend, ValidBackends)
	}
	if c.Session.Backend != BackendMemory && c.Session.Path == "" {
		return fmt.Errorf("session.path is required for the %s backend", c.Session.Backend)
	}

	return nil
}

// IsDarkTheme reports whether the dark palette was requested.
func (c *Config) IsDarkTheme() bool {
	return strings.EqualFold(c.UI.Theme, "dark")
}
