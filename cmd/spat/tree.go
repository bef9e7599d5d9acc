package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	treeDepth  int
	treeFormat string
)

var treeCmd = &cobra.Command{
	Use:   "tree <package>",
	Short: "Show a package's dependency tree",
	Long: `Render the dependency tree rooted at a package, following manifest
declarations through the tracked dataset.

Cycles are cut where a dependency loops back onto the current path, and
--depth limits how many hops are expanded.

Examples:
  spat tree vapor/vapor
  spat tree vapor/vapor --depth 3
  spat tree https://github.com/vapor/vapor --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runTree,
}

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum tree depth (0 = unlimited)")
	treeCmd.Flags().StringVar(&treeFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(treeFormat)

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ctx := newContext()

	tree, err := engine.DependencyTree(ctx, args[0], treeDepth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building tree: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(tree, OutputFormat(treeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Dependency tree rendered", map[string]interface{}{
		"package":  args[0],
		"duration": time.Since(start).Milliseconds(),
	})
}
