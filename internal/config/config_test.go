package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPulseEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PULSE_API_URL", "PULSE_API_TIMEOUT", "PULSE_SESSION_BACKEND",
		"PULSE_SESSION_PATH", "PULSE_LOG_LEVEL", "PULSE_DEBUG", "PULSE_DARK_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.GetAPITimeout())
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, filepath.Join("/home/tester", ".pulse", "session.json"), cfg.Session.Path)
	assert.True(t, cfg.UI.ConfirmDelete)
	assert.False(t, cfg.Logging.DebugMode)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearPulseEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://localhost:4000/api"
	cfg.Session.Backend = BackendSQLite
	cfg.Session.Path = "/tmp/pulse.db"
	cfg.UI.Theme = "dark"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/api", loaded.API.BaseURL)
	assert.Equal(t, BackendSQLite, loaded.Session.Backend)
	assert.Equal(t, "/tmp/pulse.db", loaded.Session.Path)
	assert.True(t, loaded.IsDarkTheme())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearPulseEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearPulseEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  timeout: 5s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetAPITimeout())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestGetAPITimeout_FallsBack(t *testing.T) {
	cfg := &Config{API: APIConfig{Timeout: "soon"}}
	assert.Equal(t, 30*time.Second, cfg.GetAPITimeout())

	cfg.API.Timeout = "-1s"
	assert.Equal(t, 30*time.Second, cfg.GetAPITimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.API.BaseURL = " " }, "api.base_url is required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "invalid api.base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com/api" }, "invalid api.base_url"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "fast" }, "invalid api.timeout"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "redis" }, "invalid session backend"},
		{"file backend without path", func(c *Config) { c.Session.Path = "" }, "session.path is required"},
		{"memory backend without path", func(c *Config) {
			c.Session.Backend = BackendMemory
			c.Session.Path = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("api"), "debug mode off disables everything")

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("api"), "no filter enables everything")

	lc.Categories = map[string]bool{"api": false, "ui": true}
	assert.False(t, lc.IsCategoryEnabled("api"))
	assert.True(t, lc.IsCategoryEnabled("ui"))
	assert.True(t, lc.IsCategoryEnabled("session"), "unlisted categories default on")
}
