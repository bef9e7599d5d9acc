package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset statistics",
	Long:  "Display aggregate statistics over the tracked packages and the dependency graph",
	Run:   runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(statsFormat)

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ctx := newContext()

	response, err := engine.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing stats: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(statsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Stats completed", map[string]interface{}{
		"packages": response.TotalPackages,
		"duration": time.Since(start).Milliseconds(),
	})
}
