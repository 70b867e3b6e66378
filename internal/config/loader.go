package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	configFile string
	envFile    string
}

// NewLoader creates a new configuration loader.
// The config file defaults to TB_CONFIG_FILE, then ~/.taskboard/config.yaml.
func NewLoader() *Loader {
	configFile := os.Getenv("TB_CONFIG_FILE")
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configFile = filepath.Join(homeDir, ".taskboard", "config.yaml")
		}
	}
	return &Loader{
		config:     NewConfig(),
		configFile: configFile,
		envFile:    ".env",
	}
}

// WithConfigFile sets the YAML file read before the environment
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFile sets the dotenv file merged into the process environment
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, when present
// 3. Merge the .env file into the environment (never overriding real variables)
// 4. Override with environment variables
// 5. Override with command line flags (handled by cobra)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

func (l *Loader) loadFile() error {
	if l.configFile == "" {
		return nil
	}
	data, err := os.ReadFile(l.configFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
	}
	if err := yaml.Unmarshal(data, l.config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", l.configFile, err)
	}
	return nil
}

func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if _, err := os.Stat(l.envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", l.envFile, err)
	}
	return nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	// API overrides
	BaseURL    *string
	APITimeout *time.Duration

	// Storage overrides
	DBDir      *string
	DBFilename *string

	// Display overrides
	TimeFormat *string

	// Application overrides
	Timeout *time.Duration
	Verbose *bool

	// Logging overrides
	LogLevel  *string
	LogFormat *string

	// Metrics overrides
	MetricsFile *string
}

// Apply copies every set override into config
func (o *ConfigOverrides) Apply(config *Config) {
	if o.BaseURL != nil {
		config.API.BaseURL = *o.BaseURL
	}
	if o.APITimeout != nil {
		config.API.Timeout = *o.APITimeout
	}

	if o.DBDir != nil {
		config.Storage.Dir = *o.DBDir
	}
	if o.DBFilename != nil {
		config.Storage.Filename = *o.DBFilename
	}

	if o.TimeFormat != nil {
		config.Display.TimeFormat = *o.TimeFormat
	}

	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
		if *o.Verbose {
			config.Logging.Level = "debug"
		}
	}

	if o.LogLevel != nil {
		config.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		config.Logging.Format = *o.LogFormat
	}

	if o.MetricsFile != nil {
		config.Metrics.TextfilePath = *o.MetricsFile
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
