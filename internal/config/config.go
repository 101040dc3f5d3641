// Package config provides configuration for the recorder.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the recorder configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// RPCPort enables the internal JSON-RPC listener when non-zero.
	RPCPort int `yaml:"rpc_port"`
}

// DatabaseConfig holds the backing store connection parameters.
type DatabaseConfig struct {
	// Driver is "sqlite3" (cgo) or "sqlite" (pure Go).
	Driver string `yaml:"driver"`
	// URL, when set, is passed to the driver verbatim after ${VAR} expansion.
	URL string `yaml:"url"`
	// Name selects a database file when URL is empty.
	Name string `yaml:"name"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Drivers lists the supported database drivers.
var Drivers = []string{"sqlite3", "sqlite"}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Port: 5001},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Name:   "recorder",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (if any), then applies environment overrides.
// A missing file yields defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	cfg.Database.URL = expandEnvVars(cfg.Database.URL)
	return &cfg, nil
}

// DSN returns the data source name for the configured driver.
// An explicit URL wins; otherwise Name selects a database file in the working directory.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	name := d.Name
	if !strings.HasSuffix(name, ".db") {
		name += ".db"
	}
	return "file:" + name + "?mode=rwc"
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = def.Database.Driver
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = def.Database.Name
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnvInt("HTTP_PORT", cfg.Server.Port)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.RPCPort = getEnvInt("RPC_PORT", cfg.Server.RPCPort)
	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Logging.Level))
}

// envVarPattern matches ${VAR_NAME} references.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} references with environment values; unset variables are kept.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks cfg for issues. It returns nil when cfg is usable.
func Validate(cfg *Config, levels []string) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 1-65535, got %d", cfg.Server.Port),
		})
	}
	if cfg.Server.RPCPort < 0 || cfg.Server.RPCPort > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.rpc_port",
			Message: fmt.Sprintf("rpc port must be 0-65535, got %d", cfg.Server.RPCPort),
		})
	}
	if !slices.Contains(Drivers, cfg.Database.Driver) {
		issues = append(issues, ValidationIssue{
			Path:    "database.driver",
			Message: fmt.Sprintf("must be one of %v, got %q", Drivers, cfg.Database.Driver),
		})
	}
	if cfg.Database.URL == "" && cfg.Database.Name == "" {
		issues = append(issues, ValidationIssue{
			Path:    "database.name",
			Message: "either database.url or database.name is required",
		})
	}
	if len(levels) > 0 && !slices.Contains(levels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", levels, cfg.Logging.Level),
		})
	}

	return issues
}
