package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spat/internal/analysis"
	"spat/internal/scoring"
)

var (
	prioritiesLimit   int
	prioritiesSort    string
	prioritiesProfile string
	prioritiesFormat  string
)

var prioritiesCmd = &cobra.Command{
	Use:   "priorities",
	Short: "Rank packages by migration priority",
	Long: `Rank tracked packages by how attractive they are as Android porting
candidates, using weighted popularity, engagement, recency, and simplicity
factors.

The weights come from the configured scoring profile; --profile points at an
alternative TOML profile for one run.

Examples:
  spat priorities
  spat priorities --limit 10 --sort stars
  spat priorities --profile aggressive.toml --format json`,
	Run: runPriorities,
}

func init() {
	prioritiesCmd.Flags().IntVar(&prioritiesLimit, "limit", 20, "Maximum packages to show (0 = all)")
	prioritiesCmd.Flags().StringVar(&prioritiesSort, "sort", "score", "Sort order (score, stars)")
	prioritiesCmd.Flags().StringVar(&prioritiesProfile, "profile", "", "Scoring profile TOML path")
	prioritiesCmd.Flags().StringVar(&prioritiesFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(prioritiesCmd)
}

func runPriorities(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(prioritiesFormat)

	order := scoring.SortOrder(prioritiesSort)
	if order != scoring.SortByScore && order != scoring.SortByStars {
		fmt.Fprintf(os.Stderr, "Error: unknown sort order %q (expected score or stars)\n", prioritiesSort)
		os.Exit(1)
	}

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ctx := newContext()

	response, err := engine.Priorities(ctx, analysis.PriorityOptions{
		Limit:   prioritiesLimit,
		Order:   order,
		Profile: prioritiesProfile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error ranking priorities: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(response, OutputFormat(prioritiesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Priority ranking completed", map[string]interface{}{
		"shown":    len(response.Records),
		"total":    response.Total,
		"duration": time.Since(start).Milliseconds(),
	})
}
