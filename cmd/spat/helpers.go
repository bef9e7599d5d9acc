package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"spat/internal/analysis"
	"spat/internal/config"
	"spat/internal/logging"
	"spat/internal/store"
)

var (
	engineOnce   sync.Once
	sharedEngine *analysis.Engine
	sharedStore  *store.Store
	engineErr    error
)

// getEngine returns a shared analysis engine instance.
// The engine is lazily initialized on first use.
func getEngine(dataRoot string, logger *logging.Logger) (*analysis.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(dataRoot)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}

		s, err := store.Open(filepath.Join(dataRoot, config.DataDirName), logger)
		if err != nil {
			engineErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		sharedStore = s

		engine, err := analysis.NewEngine(dataRoot, s, logger, cfg)
		if err != nil {
			engineErr = fmt.Errorf("failed to create engine: %w", err)
			return
		}
		sharedEngine = engine
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared analysis engine or exits on error.
func mustGetEngine(dataRoot string, logger *logging.Logger) *analysis.Engine {
	engine, err := getEngine(dataRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

// mustGetStore returns the shared package store or exits on error.
func mustGetStore(dataRoot string, logger *logging.Logger) *store.Store {
	if _, err := getEngine(dataRoot, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening package store: %v\n", err)
		os.Exit(1)
	}
	return sharedStore
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger with the specified format. SPAT_LOG_LEVEL
// overrides the level.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	level := logging.InfoLevel
	if env := os.Getenv("SPAT_LOG_LEVEL"); env != "" {
		level = logging.ParseLevel(env)
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  level,
	})
}
