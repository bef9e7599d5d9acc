package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	impactFormat string
)

var impactCmd = &cobra.Command{
	Use:   "impact [package]",
	Short: "Analyze dependent impact",
	Long: `Analyze how many tracked packages depend on each package.

Without an argument, ranks the whole dataset by total impact. With a package
reference (owner/repo or repository URL), reports that package alone.

Impact counts dependents: direct dependents plus the distinct dependency
paths that reach the package indirectly.

Examples:
  spat impact
  spat impact apple/swift-nio
  spat impact https://github.com/apple/swift-nio --format human`,
	Args: cobra.MaximumNArgs(1),
	Run:  runImpact,
}

func init() {
	impactCmd.Flags().StringVar(&impactFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(impactFormat)

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ctx := newContext()

	var response interface{}
	var err error
	if len(args) == 1 {
		response, err = engine.PackageImpact(ctx, args[0])
	} else {
		response, err = engine.ImpactAnalysis(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error analyzing impact: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(impactFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Impact analysis completed", map[string]interface{}{
		"duration": time.Since(start).Milliseconds(),
	})
}
