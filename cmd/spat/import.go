package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spat/internal/ingest"
)

var (
	importURLs      string
	importRecords   string
	importManifests string
	importFormat    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import packages into the local store",
	Long: `Import tracked packages from offline artifacts.

Sources:
  --urls FILE       Plain text file, one repository URL per line
  --records FILE    JSON array of repository metadata records
  --manifests DIR   Checkout tree (owner/repo/Package.swift) to attach manifests

Sources run in the order above when combined, so metadata lands before
manifests are attached.

Examples:
  spat import --urls packages.csv
  spat import --records github-dump.json --manifests ./checkouts
  spat import --urls seed.txt --format json`,
	Run: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importURLs, "urls", "", "Repository URL list file")
	importCmd.Flags().StringVar(&importRecords, "records", "", "JSON metadata records file")
	importCmd.Flags().StringVar(&importManifests, "manifests", "", "Manifest checkout directory")
	importCmd.Flags().StringVar(&importFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(importFormat)

	if importURLs == "" && importRecords == "" && importManifests == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one of --urls, --records, or --manifests is required")
		os.Exit(1)
	}

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	ingestor := engine.Ingestor()
	ctx := newContext()

	var summaries []*ingest.Summary

	if importURLs != "" {
		summary, err := ingestor.LoadURLList(ctx, importURLs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing URL list: %v\n", err)
			os.Exit(1)
		}
		summaries = append(summaries, summary)
	}

	if importRecords != "" {
		summary, err := ingestor.LoadRecords(ctx, importRecords)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing records: %v\n", err)
			os.Exit(1)
		}
		summaries = append(summaries, summary)
	}

	if importManifests != "" {
		summary, err := ingestor.AttachManifests(ctx, importManifests)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error attaching manifests: %v\n", err)
			os.Exit(1)
		}
		summaries = append(summaries, summary)
	}

	for _, summary := range summaries {
		output, err := FormatResponse(summary, OutputFormat(importFormat))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(output)
	}

	logger.Debug("Import completed", map[string]interface{}{
		"runs":     len(summaries),
		"duration": time.Since(start).Milliseconds(),
	})
}
