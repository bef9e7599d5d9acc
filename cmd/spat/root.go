package main

import (
	"os"

	"github.com/spf13/cobra"

	"spat/internal/version"
)

var (
	// dataDirFlag is the CLI --data-dir flag value
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "spat",
	Short: "spat - Swift Package Android Tracker",
	Long: `spat tracks Swift packages that run on Linux but have no Android support yet.
It keeps a local package database, reconstructs the dependency graph from
package manifests, and ranks porting candidates by how much of the ecosystem
each one would unblock.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("spat version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Directory holding the .spat data directory (default: current directory)")
}

// resolveDataRoot determines the directory that holds .spat/.
// Precedence: CLI flag > SPAT_DATA_DIR env var > current directory
func resolveDataRoot() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	if env := os.Getenv("SPAT_DATA_DIR"); env != "" {
		return env
	}
	return "."
}
