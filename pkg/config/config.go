package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the exporter.
type Config struct {
	// Extract API settings
	API APIConfig `yaml:"api" json:"api"`

	// Export output settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Token storage settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds settings for the remote extract endpoint.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ExportConfig holds output settings for downloaded data.
type ExportConfig struct {
	OutputPath string `yaml:"output_path" json:"output_path"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// StorageConfig holds token database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultBaseURL is the production extract endpoint.
const DefaultBaseURL = "https://mds-data-1.ciim.k-int.com"

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 60 * time.Second,
		},
		Export: ExportConfig{
			OutputPath: "downloads.jsonl",
			Compress:   false,
		},
		Storage: StorageConfig{
			DatabasePath: defaultDatabasePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// defaultDatabasePath returns the user-data location of the token database.
// XDG_DATA_HOME is honored when set.
func defaultDatabasePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "mdsexport", "tokens.db")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mdsexport", "tokens.db")
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("MDSEXPORT_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if timeout := os.Getenv("MDSEXPORT_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid MDSEXPORT_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if output := os.Getenv("MDSEXPORT_OUTPUT"); output != "" {
		c.Export.OutputPath = output
	}
	if dbPath := os.Getenv("MDSEXPORT_DATABASE"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
	if logLevel := os.Getenv("MDSEXPORT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for a config file in standard locations.
func (c *Config) findConfigFile() string {
	locations := []string{
		".mdsexport.yaml",
		".mdsexport.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "mdsexport", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "mdsexport", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".mdsexport.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}
	if c.Export.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Storage.DatabasePath == "" {
		errs = append(errs, errors.New("token database path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Export.OutputPath = output
	}
	if compress, ok := flags["compress"].(bool); ok {
		c.Export.Compress = compress
	}
	if dbPath, ok := flags["database"].(string); ok && dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".mdsexport.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
