package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration options for the taskboard client
type Config struct {
	API         APIConfig         `yaml:"api"`
	Storage     StorageConfig     `yaml:"storage"`
	Display     DisplayConfig     `yaml:"display"`
	Validation  ValidationConfig  `yaml:"validation"`
	Application ApplicationConfig `yaml:"application"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Commands    CommandsConfig    `yaml:"commands"`
}

// APIConfig holds settings for talking to the task server
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"TB_API_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"TB_API_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"TB_API_RATE_LIMIT"`
	RateBurst int           `yaml:"rate_burst" env:"TB_API_RATE_BURST"`
}

// StorageConfig holds settings for the local session database
type StorageConfig struct {
	Dir            string        `yaml:"dir" env:"TB_DB_DIR"`
	Filename       string        `yaml:"filename" env:"TB_DB_FILENAME"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"TB_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"TB_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"TB_DB_DIR_PERMISSIONS"`
}

// DisplayConfig holds output formatting configuration
type DisplayConfig struct {
	TimeFormat string `yaml:"time_format" env:"TB_TIME_DISPLAY_FORMAT"`
	StripHTML  bool   `yaml:"strip_html" env:"TB_DISPLAY_STRIP_HTML"`
}

// ValidationConfig holds task input rules
type ValidationConfig struct {
	TitleMinLength       int `yaml:"title_min_length" env:"TB_VALIDATION_TITLE_MIN"`
	TitleMaxLength       int `yaml:"title_max_length" env:"TB_VALIDATION_TITLE_MAX"`
	DescriptionMaxLength int `yaml:"description_max_length" env:"TB_VALIDATION_DESCRIPTION_MAX"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TB_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TB_APP_VERBOSE"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"TB_LOG_LEVEL"`
	Format string `yaml:"format" env:"TB_LOG_FORMAT"`
}

// MetricsConfig holds the optional textfile export target
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"TB_METRICS_FILE"`
}

// CommandsConfig holds command-specific defaults
type CommandsConfig struct {
	ListDefaultFormat string `yaml:"list_default_format" env:"TB_LIST_DEFAULT_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:3000",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			RateBurst: 5,
		},
		Storage: StorageConfig{
			Dir:            filepath.Join(homeDir, ".taskboard"),
			Filename:       "session.db",
			QueryTimeout:   5 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0700,
		},
		Display: DisplayConfig{
			TimeFormat: "2006-01-02 15:04",
			StripHTML:  true,
		},
		Validation: ValidationConfig{
			TitleMinLength:       1,
			TitleMaxLength:       200,
			DescriptionMaxLength: 2000,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Commands: CommandsConfig{
			ListDefaultFormat: "table",
		},
	}
}

// GetDatabasePath returns the full path to the session database file
func (c *Config) GetDatabasePath() string {
	if c.Storage.Filename == ":memory:" {
		return c.Storage.Filename
	}
	return filepath.Join(c.Storage.Dir, c.Storage.Filename)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// API configuration
	if baseURL := os.Getenv("TB_API_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if timeout := os.Getenv("TB_API_TIMEOUT"); timeout != "" {
		c.API.Timeout = ParseDurationWithFallback(timeout, c.API.Timeout)
	}
	if limit := os.Getenv("TB_API_RATE_LIMIT"); limit != "" {
		if f, err := strconv.ParseFloat(limit, 64); err == nil {
			c.API.RateLimit = f
		}
	}
	if burst := os.Getenv("TB_API_RATE_BURST"); burst != "" {
		c.API.RateBurst = ParseIntWithFallback(burst, c.API.RateBurst)
	}

	// Storage configuration
	if dir := os.Getenv("TB_DB_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("TB_DB_FILENAME"); filename != "" {
		c.Storage.Filename = filename
	}
	if timeout := os.Getenv("TB_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Storage.QueryTimeout = ParseDurationWithFallback(timeout, c.Storage.QueryTimeout)
	}
	if timeout := os.Getenv("TB_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Storage.WriteTimeout = ParseDurationWithFallback(timeout, c.Storage.WriteTimeout)
	}
	if perms := os.Getenv("TB_DB_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Display configuration
	if format := os.Getenv("TB_TIME_DISPLAY_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if strip := os.Getenv("TB_DISPLAY_STRIP_HTML"); strip != "" {
		c.Display.StripHTML = ParseBoolWithFallback(strip, c.Display.StripHTML)
	}

	// Validation configuration
	if minLen := os.Getenv("TB_VALIDATION_TITLE_MIN"); minLen != "" {
		c.Validation.TitleMinLength = ParseIntWithFallback(minLen, c.Validation.TitleMinLength)
	}
	if maxLen := os.Getenv("TB_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxLen := os.Getenv("TB_VALIDATION_DESCRIPTION_MAX"); maxLen != "" {
		c.Validation.DescriptionMaxLength = ParseIntWithFallback(maxLen, c.Validation.DescriptionMaxLength)
	}

	// Application configuration
	if timeout := os.Getenv("TB_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TB_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Logging configuration
	if level := os.Getenv("TB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TB_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	// Metrics configuration
	if path := os.Getenv("TB_METRICS_FILE"); path != "" {
		c.Metrics.TextfilePath = path
	}

	// Commands configuration
	if format := os.Getenv("TB_LIST_DEFAULT_FORMAT"); format != "" {
		c.Commands.ListDefaultFormat = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// API configuration
	if c.API.BaseURL == "" {
		return &ConfigError{Field: "api.base_url", Message: "API base URL cannot be empty"}
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Field: "api.base_url", Message: "API base URL must be an absolute http(s) URL"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "API timeout must be positive"}
	}
	if c.API.RateLimit < 0 {
		return &ConfigError{Field: "api.rate_limit", Message: "rate limit cannot be negative"}
	}
	if c.API.RateLimit > 0 && c.API.RateBurst < 1 {
		return &ConfigError{Field: "api.rate_burst", Message: "rate burst must be at least 1 when rate limiting is enabled"}
	}

	// Storage configuration
	if c.Storage.Filename == "" {
		return &ConfigError{Field: "storage.filename", Message: "database filename cannot be empty"}
	}
	if c.Storage.Filename != ":memory:" && c.Storage.Dir == "" {
		return &ConfigError{Field: "storage.dir", Message: "database directory cannot be empty"}
	}
	if c.Storage.QueryTimeout <= 0 {
		return &ConfigError{Field: "storage.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Storage.WriteTimeout <= 0 {
		return &ConfigError{Field: "storage.write_timeout", Message: "write timeout must be positive"}
	}

	// Display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}

	// Validation configuration
	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.DescriptionMaxLength < 0 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length cannot be negative"}
	}

	// Application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	// Logging configuration
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	// Commands configuration
	switch c.Commands.ListDefaultFormat {
	case "table", "json", "csv":
	default:
		return &ConfigError{Field: "commands.list_default_format", Message: "list format must be table, json or csv"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
