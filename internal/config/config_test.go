package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "human")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Ingest.ManifestWorkers <= 0 {
		t.Error("ManifestWorkers should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"version 0", func(c *Config) { c.Version = 0 }, true},
		{"version 2", func(c *Config) { c.Version = 2 }, true},
		{"json format", func(c *Config) { c.Logging.Format = "json" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"negative workers", func(c *Config) { c.Ingest.ManifestWorkers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() should return error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() returned unexpected error: %v", err)
			}
			if err != nil {
				if _, ok := err.(*ConfigError); !ok {
					t.Errorf("Validate() error type = %T, want *ConfigError", err)
				}
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "version",
		Message: "unsupported config version",
	}

	got := err.Error()
	want := "config error in field 'version': unsupported config version"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Should return default config when no config file exists
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1 (default)", cfg.Version)
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want %q (default)", cfg.Logging.Format, "human")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	spatDir := filepath.Join(tmpDir, DataDirName)
	if err := os.MkdirAll(spatDir, 0755); err != nil {
		t.Fatalf("Failed to create %s dir: %v", DataDirName, err)
	}

	configContent := `{
		"version": 1,
		"logging": {"format": "json", "level": "debug"},
		"resolver": {"forges": ["codeberg.org"]},
		"ingest": {"manifestWorkers": 4},
		"scoring": {"profile": "profiles/aggressive.toml"}
	}`
	if err := os.WriteFile(filepath.Join(spatDir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if len(cfg.Resolver.Forges) != 1 || cfg.Resolver.Forges[0] != "codeberg.org" {
		t.Errorf("unexpected forges: %v", cfg.Resolver.Forges)
	}
	if cfg.Ingest.ManifestWorkers != 4 {
		t.Errorf("ManifestWorkers = %d, want 4", cfg.Ingest.ManifestWorkers)
	}
	if cfg.Scoring.Profile != "profiles/aggressive.toml" {
		t.Errorf("Scoring.Profile = %q", cfg.Scoring.Profile)
	}
}

func TestConfig_Save(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Ingest.ManifestWorkers = 42

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath := filepath.Join(tmpDir, DataDirName, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if loaded.Ingest.ManifestWorkers != 42 {
		t.Errorf("Loaded ManifestWorkers = %d, want 42", loaded.Ingest.ManifestWorkers)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config, overrides []EnvOverride)
	}{
		{
			name:    "logging level override",
			envVars: map[string]string{"SPAT_LOG_LEVEL": "debug"},
			validate: func(t *testing.T, cfg *Config, overrides []EnvOverride) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
				}
				if len(overrides) != 1 {
					t.Errorf("len(overrides) = %d, want 1", len(overrides))
				}
			},
		},
		{
			name:    "workers int override",
			envVars: map[string]string{"SPAT_MANIFEST_WORKERS": "3"},
			validate: func(t *testing.T, cfg *Config, overrides []EnvOverride) {
				if cfg.Ingest.ManifestWorkers != 3 {
					t.Errorf("ManifestWorkers = %d, want 3", cfg.Ingest.ManifestWorkers)
				}
			},
		},
		{
			name:    "invalid int ignored",
			envVars: map[string]string{"SPAT_MANIFEST_WORKERS": "not-a-number"},
			validate: func(t *testing.T, cfg *Config, overrides []EnvOverride) {
				if cfg.Ingest.ManifestWorkers != 8 {
					t.Errorf("ManifestWorkers = %d, want 8 (default)", cfg.Ingest.ManifestWorkers)
				}
				if len(overrides) != 0 {
					t.Errorf("len(overrides) = %d, want 0", len(overrides))
				}
			},
		},
		{
			name: "multiple overrides",
			envVars: map[string]string{
				"SPAT_LOG_FORMAT":      "json",
				"SPAT_SCORING_PROFILE": "custom.toml",
			},
			validate: func(t *testing.T, cfg *Config, overrides []EnvOverride) {
				if cfg.Logging.Format != "json" {
					t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
				}
				if cfg.Scoring.Profile != "custom.toml" {
					t.Errorf("Scoring.Profile = %q, want %q", cfg.Scoring.Profile, "custom.toml")
				}
				if len(overrides) != 2 {
					t.Errorf("len(overrides) = %d, want 2", len(overrides))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for envVar := range envVarMappings {
				os.Unsetenv(envVar)
			}
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer func() {
				for k := range tt.envVars {
					os.Unsetenv(k)
				}
			}()

			cfg := DefaultConfig()
			overrides := applyEnvOverrides(cfg)

			tt.validate(t, cfg, overrides)
		})
	}
}

func TestApplyOverride_InvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	if applyOverride(cfg, "unknown.path", "value") {
		t.Error("applyOverride() should return false for unknown path")
	}
}
