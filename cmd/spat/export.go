package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spat/internal/analysis"
	"spat/internal/export"
)

var (
	exportOutput  string
	exportFormat  string
	exportProfile string
)

var exportCmd = &cobra.Command{
	Use:   "export <records|impact|priorities>",
	Short: "Export a dataset to JSON or CSV",
	Long: `Export a dataset for spreadsheets, dashboards, or other tooling.

Datasets:
  records      All tracked package records
  impact       The full dependent impact analysis
  priorities   The ranked migration priority list

The format is taken from the output extension (.json, .csv) unless --format
is given. An output ending in .gz is gzip-compressed; "-" writes to stdout.

Examples:
  spat export records -o packages.csv
  spat export impact -o impact.json.gz
  spat export priorities --format csv -o -`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"records", "impact", "priorities"},
	Run:       runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output path (- for stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format (json, csv)")
	exportCmd.Flags().StringVar(&exportProfile, "profile", "", "Scoring profile TOML path (priorities only)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger("human")
	dataset := args[0]

	format, err := export.DetectFormat(exportOutput, exportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dataRoot := resolveDataRoot()
	engine := mustGetEngine(dataRoot, logger)
	s := mustGetStore(dataRoot, logger)
	ctx := newContext()

	out, err := export.OpenOutput(exportOutput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		os.Exit(1)
	}

	exporter := export.NewExporter(logger)
	switch dataset {
	case "records":
		records, listErr := s.List(false)
		if listErr != nil {
			err = listErr
			break
		}
		err = exporter.Records(out, records, format)
	case "impact":
		analysisResult, impactErr := engine.ImpactAnalysis(ctx)
		if impactErr != nil {
			err = impactErr
			break
		}
		err = exporter.Impact(out, analysisResult, format)
	case "priorities":
		response, rankErr := engine.Priorities(ctx, analysis.PriorityOptions{Profile: exportProfile})
		if rankErr != nil {
			err = rankErr
			break
		}
		err = exporter.Priorities(out, response.Records, format)
	default:
		err = fmt.Errorf("unknown dataset %q (expected records, impact, or priorities)", dataset)
	}

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting %s: %v\n", dataset, err)
		os.Exit(1)
	}

	if exportOutput != "-" && exportOutput != "" {
		fmt.Printf("Exported %s to %s\n", dataset, exportOutput)
	}

	logger.Debug("Export completed", map[string]interface{}{
		"dataset":  dataset,
		"format":   string(format),
		"duration": time.Since(start).Milliseconds(),
	})
}
