package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spat system status",
	Long:  "Display the package database status, state distribution, and recent import runs",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(statusFormat)

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ctx := newContext()

	response, err := engine.Status(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(statusFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	duration := time.Since(start).Milliseconds()
	if statusFormat == "human" {
		fmt.Printf("\n(Query took %dms)\n", duration)
	}
}
