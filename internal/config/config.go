package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// DataDirName is the dot directory holding the config file and database.
const DataDirName = ".spat"

// Config represents the complete spat configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
	Resolver ResolverConfig `json:"resolver" mapstructure:"resolver"`
	Ingest   IngestConfig   `json:"ingest" mapstructure:"ingest"`
	Scoring  ScoringConfig  `json:"scoring" mapstructure:"scoring"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// ResolverConfig contains identity resolution configuration. Forges listed
// here are matched in addition to the built-in ones.
type ResolverConfig struct {
	Forges []string `json:"forges" mapstructure:"forges"`
}

// IngestConfig contains import pipeline configuration
type IngestConfig struct {
	ManifestWorkers int `json:"manifestWorkers" mapstructure:"manifestWorkers"`
}

// ScoringConfig contains priority scoring configuration
type ScoringConfig struct {
	// Profile is an optional TOML weight profile path, relative to the
	// data root when not absolute.
	Profile string `json:"profile" mapstructure:"profile"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Resolver: ResolverConfig{
			Forges: []string{},
		},
		Ingest: IngestConfig{
			ManifestWorkers: 8,
		},
		Scoring: ScoringConfig{
			Profile: "",
		},
	}
}

// LoadConfig loads configuration from <dataRoot>/.spat/config.json
func LoadConfig(dataRoot string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 1)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")
	v.SetDefault("ingest.manifestWorkers", 8)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(dataRoot, DataDirName))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// envVarMappings maps environment variables to config paths. Environment
// values win over the config file.
var envVarMappings = map[string]string{
	"SPAT_LOG_LEVEL":        "logging.level",
	"SPAT_LOG_FORMAT":       "logging.format",
	"SPAT_MANIFEST_WORKERS": "ingest.manifestWorkers",
	"SPAT_SCORING_PROFILE":  "scoring.profile",
}

// EnvOverride records one applied environment override.
type EnvOverride struct {
	EnvVar string
	Path   string
	Value  string
}

func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for envVar, path := range envVarMappings {
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}
		if applyOverride(cfg, path, value) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, Path: path, Value: value})
		}
	}
	return overrides
}

// applyOverride sets one config path from a string value. Unknown paths and
// unparsable values are ignored rather than fatal.
func applyOverride(cfg *Config, path, value string) bool {
	switch path {
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "ingest.manifestWorkers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.Ingest.ManifestWorkers = n
	case "scoring.profile":
		cfg.Scoring.Profile = value
	default:
		return false
	}
	return true
}

// Save writes the configuration to <dataRoot>/.spat/config.json
func (c *Config) Save(dataRoot string) error {
	dir := filepath.Join(dataRoot, DataDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}

	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}

	if c.Ingest.ManifestWorkers < 0 {
		return &ConfigError{Field: "ingest.manifestWorkers", Message: "must not be negative"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
