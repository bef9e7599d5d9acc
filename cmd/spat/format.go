package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"spat/internal/analysis"
	"spat/internal/depgraph"
	"spat/internal/ingest"
	"spat/internal/manifest"
	"spat/internal/overrides"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *analysis.StatusResponse:
		return formatStatusHuman(v)
	case *analysis.StatsResponse:
		return formatStatsHuman(v)
	case *analysis.PriorityResponse:
		return formatPrioritiesHuman(v)
	case *depgraph.ImpactAnalysis:
		return formatImpactHuman(v)
	case *depgraph.ImpactRecord:
		return formatImpactRecordHuman(v)
	case *depgraph.TreeNode:
		return formatTreeHuman(v)
	case *ingest.Summary:
		return formatIngestHuman(v)
	case *overrides.Result:
		return formatApplyHuman(v)
	case *StatesResponseCLI:
		return formatStatesHuman(v)
	case *HistoryResponseCLI:
		return formatHistoryHuman(v)
	default:
		// For unknown types, fall back to JSON
		data, err := formatJSON(resp)
		if err != nil {
			return "", err
		}
		return "Human format not available; showing JSON:\n" + data, nil
	}
}

// formatStatusHuman formats a StatusResponse in human-readable format
func formatStatusHuman(resp *analysis.StatusResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("spat status - v%s\n", resp.Version))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Database: %s (schema v%d)\n", resp.DatabasePath, resp.SchemaVersion))
	b.WriteString(fmt.Sprintf("Tracked Packages: %d\n", resp.TotalPackages))

	if len(resp.ByState) > 0 {
		b.WriteString("\nBy State:\n")
		writeCountMap(&b, resp.ByState)
	}
	if len(resp.ByProcessingStatus) > 0 {
		b.WriteString("\nBy Processing Status:\n")
		writeCountMap(&b, resp.ByProcessingStatus)
	}

	if len(resp.RecentRuns) > 0 {
		b.WriteString("\nRecent Runs:\n")
		for _, run := range resp.RecentRuns {
			b.WriteString(fmt.Sprintf("  %s %s: %s (%dms)\n",
				run.CreatedAt.Format("2006-01-02 15:04"), run.Action, run.Message, run.DurationMs))
		}
	}

	return b.String(), nil
}

// formatStatsHuman formats a StatsResponse in human-readable format
func formatStatsHuman(resp *analysis.StatsResponse) (string, error) {
	var b strings.Builder

	b.WriteString("Dataset Statistics\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Tracked Packages: %d\n", resp.TotalPackages))
	b.WriteString(fmt.Sprintf("With Manifest: %d (%.1f%%)\n", resp.WithManifest, resp.ManifestCoverage*100))
	b.WriteString(fmt.Sprintf("Average Stars: %.1f\n", resp.AverageStars))
	b.WriteString(fmt.Sprintf("Average Dependencies: %.1f\n", resp.AverageDependencies))

	b.WriteString(fmt.Sprintf("\nGraph: %d nodes, %d edges, max depth %d",
		resp.Graph.Nodes, resp.Graph.Edges, resp.Graph.MaxDepth))
	if resp.Graph.Externals > 0 {
		b.WriteString(fmt.Sprintf(" (%d external)", resp.Graph.Externals))
	}
	b.WriteString("\n")

	if len(resp.ByState) > 0 {
		b.WriteString("\nBy State:\n")
		writeCountMap(&b, resp.ByState)
	}
	if len(resp.Languages) > 0 {
		b.WriteString("\nLanguages:\n")
		writeCountMap(&b, resp.Languages)
	}

	if len(resp.TopStarred) > 0 {
		b.WriteString("\nTop Starred:\n")
		for i, pkg := range resp.TopStarred {
			b.WriteString(fmt.Sprintf("  %d. %s (%d stars, %s)\n", i+1, pkg.PackageID, pkg.Stars, pkg.State))
		}
	}

	return b.String(), nil
}

// formatPrioritiesHuman formats a PriorityResponse in human-readable format
func formatPrioritiesHuman(resp *analysis.PriorityResponse) (string, error) {
	var b strings.Builder

	b.WriteString("Migration Priorities\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Showing %d of %d packages\n", len(resp.Records), resp.Total))
	b.WriteString(fmt.Sprintf("Weights: popularity=%.2f engagement=%.2f recency=%.2f simplicity=%.2f\n\n",
		resp.Weights.Popularity, resp.Weights.Engagement, resp.Weights.Recency, resp.Weights.Simplicity))

	for i, rec := range resp.Records {
		b.WriteString(fmt.Sprintf("%d. %s (score: %.3f)\n", i+1, rec.PackageID, rec.Score))
		b.WriteString(fmt.Sprintf("   Stars: %d | Dependencies: %d\n", rec.Stars, rec.DependencyCount))
		b.WriteString(fmt.Sprintf("   %s\n\n", rec.Rationale))
	}

	return b.String(), nil
}

// formatImpactHuman formats a full ImpactAnalysis in human-readable format
func formatImpactHuman(resp *depgraph.ImpactAnalysis) (string, error) {
	var b strings.Builder

	b.WriteString("Ecosystem Impact Analysis\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Packages: %d\n", resp.Summary.TotalPackages))
	b.WriteString(fmt.Sprintf("High Impact: %d\n", resp.Summary.HighImpactPackages))
	b.WriteString(fmt.Sprintf("Foundational: %d\n\n", resp.Summary.FoundationalPackages))

	shown := len(resp.Records)
	if shown > 15 {
		shown = 15
	}
	for _, rec := range resp.Records[:shown] {
		b.WriteString(fmt.Sprintf("%s\n", rec.PackageID))
		b.WriteString(fmt.Sprintf("  direct: %d, indirect: %d, total: %d (depth %d)\n",
			rec.DirectDependents, rec.IndirectImpact, rec.TotalImpact, rec.Depth))
	}
	if len(resp.Records) > shown {
		b.WriteString(fmt.Sprintf("... and %d more\n", len(resp.Records)-shown))
	}

	return b.String(), nil
}

// formatImpactRecordHuman formats a single package impact record
func formatImpactRecordHuman(rec *depgraph.ImpactRecord) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Impact: %s\n", rec.PackageID))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Direct Dependents: %d\n", rec.DirectDependents))
	b.WriteString(fmt.Sprintf("Indirect Impact: %d\n", rec.IndirectImpact))
	b.WriteString(fmt.Sprintf("Total Impact: %d\n", rec.TotalImpact))
	b.WriteString(fmt.Sprintf("Depth: %d\n", rec.Depth))
	b.WriteString(fmt.Sprintf("Dependencies: %d\n", rec.DependencyCount))
	b.WriteString(fmt.Sprintf("Stars: %d\n", rec.Stars))
	if rec.State != "" {
		b.WriteString(fmt.Sprintf("State: %s\n", rec.State))
	}
	if rec.External {
		b.WriteString("External: referenced by manifests but not tracked\n")
	}

	return b.String(), nil
}

// formatTreeHuman renders a dependency tree with box-drawing connectors
func formatTreeHuman(root *depgraph.TreeNode) (string, error) {
	var b strings.Builder
	b.WriteString(treeLabel(root, true) + "\n")
	writeTreeChildren(&b, root, "")
	return b.String(), nil
}

func writeTreeChildren(b *strings.Builder, node *depgraph.TreeNode, prefix string) {
	for i, child := range node.Dependencies {
		last := i == len(node.Dependencies)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		b.WriteString(prefix + connector + treeLabel(child, false) + "\n")
		writeTreeChildren(b, child, childPrefix)
	}
}

func treeLabel(node *depgraph.TreeNode, isRoot bool) string {
	label := node.PackageID
	if !isRoot && node.Constraint != "" {
		label += fmt.Sprintf(" (%s)", node.Constraint)
	}
	if node.Kind == manifest.KindTest {
		label += " [test]"
	}
	if node.External {
		label += " [external]"
	}
	if node.Truncated {
		switch node.TruncatedReason {
		case depgraph.TruncatedCycle:
			label += " [cycle]"
		case depgraph.TruncatedMaxDepth:
			label += " ..."
		}
	}
	return label
}

// formatIngestHuman formats an ingest Summary in human-readable format
func formatIngestHuman(resp *ingest.Summary) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Import: %s\n", resp.Action))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Processed: %d\n", resp.Processed))
	b.WriteString(fmt.Sprintf("  Added:   %d\n", resp.Added))
	b.WriteString(fmt.Sprintf("  Updated: %d\n", resp.Updated))
	b.WriteString(fmt.Sprintf("  Skipped: %d\n", resp.Skipped))
	b.WriteString(fmt.Sprintf("  Failed:  %d\n", resp.Failed))
	b.WriteString(fmt.Sprintf("Duration: %dms\n", resp.DurationMs))

	return b.String(), nil
}

// formatApplyHuman formats an overrides Result in human-readable format
func formatApplyHuman(resp *overrides.Result) (string, error) {
	var b strings.Builder

	b.WriteString("State Overrides\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Applied: %d\n", resp.Applied))
	b.WriteString(fmt.Sprintf("Skipped: %d\n", resp.Skipped))
	b.WriteString(fmt.Sprintf("Failed:  %d\n", resp.Failed))

	if len(resp.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range resp.Errors {
			b.WriteString(fmt.Sprintf("  ! %s\n", e))
		}
	}

	return b.String(), nil
}

// formatStatesHuman formats a StatesResponseCLI in human-readable format
func formatStatesHuman(resp *StatesResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Migration States\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, st := range resp.States {
		b.WriteString(fmt.Sprintf("%-18s %4d  %s\n", st.Name, st.Count, st.Description))
	}

	return b.String(), nil
}

// formatHistoryHuman formats a HistoryResponseCLI in human-readable format
func formatHistoryHuman(resp *HistoryResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("State History: %s\n", resp.URL))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Transitions) == 0 {
		b.WriteString("No transitions recorded.\n")
		return b.String(), nil
	}

	for _, tr := range resp.Transitions {
		b.WriteString(fmt.Sprintf("%s  %s -> %s", tr.CreatedAt.Format("2006-01-02 15:04"), tr.FromState, tr.ToState))
		if tr.ChangedBy != "" {
			b.WriteString(fmt.Sprintf(" (by %s)", tr.ChangedBy))
		}
		b.WriteString("\n")
		if tr.Reason != "" {
			b.WriteString(fmt.Sprintf("  reason: %s\n", tr.Reason))
		}
	}

	return b.String(), nil
}

// writeCountMap renders a name -> count map sorted by key
func writeCountMap(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %-18s %d\n", k, counts[k]))
	}
}
