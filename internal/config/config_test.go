package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "session.db", cfg.Storage.Filename)
	assert.Equal(t, uint32(0700), cfg.Storage.DirPermissions)
	assert.True(t, cfg.Display.StripHTML)
	assert.Equal(t, "table", cfg.Commands.ListDefaultFormat)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestGetDatabasePath(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Dir = "/tmp/tb"
	assert.Equal(t, filepath.Join("/tmp/tb", "session.db"), cfg.GetDatabasePath())

	cfg.Storage.Filename = ":memory:"
	assert.Equal(t, ":memory:", cfg.GetDatabasePath())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TB_API_BASE_URL", "https://tasks.example.com")
	t.Setenv("TB_API_TIMEOUT", "3s")
	t.Setenv("TB_API_RATE_LIMIT", "2.5")
	t.Setenv("TB_DB_DIR_PERMISSIONS", "750")
	t.Setenv("TB_DISPLAY_STRIP_HTML", "false")
	t.Setenv("TB_VALIDATION_TITLE_MAX", "80")
	t.Setenv("TB_LOG_FORMAT", "json")
	t.Setenv("TB_LIST_DEFAULT_FORMAT", "csv")
	t.Setenv("TB_APP_TIMEOUT", "not-a-duration")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, "https://tasks.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.5, cfg.API.RateLimit)
	assert.Equal(t, uint32(0750), cfg.Storage.DirPermissions)
	assert.False(t, cfg.Display.StripHTML)
	assert.Equal(t, 80, cfg.Validation.TitleMaxLength)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "csv", cfg.Commands.ListDefaultFormat)
	assert.Equal(t, 60*time.Second, cfg.Application.Timeout, "unparseable values fall back")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"zero api timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }, "api.rate_limit"},
		{"zero burst", func(c *Config) { c.API.RateBurst = 0 }, "api.rate_burst"},
		{"empty filename", func(c *Config) { c.Storage.Filename = "" }, "storage.filename"},
		{"empty dir", func(c *Config) { c.Storage.Dir = "" }, "storage.dir"},
		{"title bounds", func(c *Config) { c.Validation.TitleMaxLength = 0 }, "validation.title_max_length"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"list format", func(c *Config) { c.Commands.ListDefaultFormat = "yaml" }, "commands.list_default_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Storage.Dir = "/tmp/tb"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := NewConfig()
	cfg.Storage.Dir = "/tmp/tb"
	cfg.API.RateLimit = 0
	cfg.API.RateBurst = 0
	assert.NoError(t, cfg.Validate())
}
