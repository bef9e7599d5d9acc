package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spat/internal/config"
	"spat/internal/errors"
	"spat/internal/store"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the spat data directory",
	Long:  "Creates a .spat/ directory with default configuration and an empty package database",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes the existing .spat directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := newLogger("human")
	dataRoot := resolveDataRoot()

	// Check if .spat already exists
	spatDir := filepath.Join(dataRoot, config.DataDirName)
	if _, statErr := os.Stat(spatDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("spat already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(spatDir, "config.json"))
			fmt.Println("\nRun 'spat init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(spatDir); removeErr != nil {
			return errors.New(errors.InternalError, "failed to remove existing .spat directory", removeErr)
		}
		logger.Info("Removed existing .spat directory", nil)
	}

	// Write default config
	cfg := config.DefaultConfig()
	if err := cfg.Save(dataRoot); err != nil {
		return errors.New(errors.InternalError, "failed to write config file", err)
	}

	// Create the package database
	s, err := store.Open(spatDir, logger)
	if err != nil {
		return errors.New(errors.StoreUnavailable, "failed to create package database", err)
	}
	defer s.Close()

	logger.Info("spat initialized", map[string]interface{}{
		"data_dir": spatDir,
		"database": s.Path(),
	})

	fmt.Println("spat initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(spatDir, "config.json"))
	fmt.Printf("Database created at: %s\n", s.Path())
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'spat import --urls <file>' to load tracked packages")
	fmt.Println("  2. Run 'spat status' to see the dataset status")

	return nil
}
