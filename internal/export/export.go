// Package export serializes tracked packages, impact analyses, and priority
// rankings to JSON or CSV for downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"spat/internal/depgraph"
	"spat/internal/errors"
	"spat/internal/logging"
	"spat/internal/scoring"
	"spat/internal/store"
)

// Format selects the serialization of an export.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name from the CLI.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCSV:
		return Format(name), nil
	default:
		return "", errors.New(errors.InvalidArgument,
			fmt.Sprintf("unsupported export format %q (expected json or csv)", name), nil)
	}
}

// Exporter writes datasets to an output stream.
type Exporter struct {
	logger *logging.Logger
}

// NewExporter creates a new exporter.
func NewExporter(logger *logging.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Records exports stored package records.
func (e *Exporter) Records(w io.Writer, records []*store.Record, format Format) error {
	switch format {
	case FormatJSON:
		return e.writeJSON(w, records, len(records))
	case FormatCSV:
		return e.recordsCSV(w, records)
	default:
		return unsupported(format)
	}
}

// Impact exports a full impact analysis.
func (e *Exporter) Impact(w io.Writer, analysis *depgraph.ImpactAnalysis, format Format) error {
	switch format {
	case FormatJSON:
		return e.writeJSON(w, analysis, len(analysis.Records))
	case FormatCSV:
		return e.impactCSV(w, analysis)
	default:
		return unsupported(format)
	}
}

// Priorities exports a ranked priority list.
func (e *Exporter) Priorities(w io.Writer, records []scoring.ScoredRecord, format Format) error {
	switch format {
	case FormatJSON:
		return e.writeJSON(w, records, len(records))
	case FormatCSV:
		return e.prioritiesCSV(w, records)
	default:
		return unsupported(format)
	}
}

func (e *Exporter) writeJSON(w io.Writer, payload interface{}, items int) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.New(errors.ExportFailed, "failed to encode export", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.New(errors.ExportFailed, "failed to write export", err)
	}

	e.logger.Debug("Export written", map[string]interface{}{
		"format": string(FormatJSON),
		"items":  items,
	})
	return nil
}

func (e *Exporter) recordsCSV(w io.Writer, records []*store.Record) error {
	cw := csv.NewWriter(w)
	header := []string{
		"url", "owner", "name", "state", "stars", "forks",
		"dependencies", "has_manifest", "linux_compatible", "android_compatible",
		"last_synced",
	}
	if err := cw.Write(header); err != nil {
		return errors.New(errors.ExportFailed, "failed to write export", err)
	}

	for _, r := range records {
		row := []string{
			r.URL, r.Owner, r.Name, string(r.State),
			strconv.Itoa(r.Stars), strconv.Itoa(r.Forks),
			strconv.Itoa(r.DependenciesCount),
			strconv.FormatBool(r.HasManifest),
			strconv.FormatBool(r.LinuxCompatible),
			strconv.FormatBool(r.AndroidCompatible),
			formatTime(r.LastSynced),
		}
		if err := cw.Write(row); err != nil {
			return errors.New(errors.ExportFailed, "failed to write export", err)
		}
	}
	return e.flushCSV(cw, len(records))
}

func (e *Exporter) impactCSV(w io.Writer, analysis *depgraph.ImpactAnalysis) error {
	cw := csv.NewWriter(w)
	header := []string{
		"package", "direct_dependents", "indirect_impact", "total_impact",
		"depth", "stars", "state",
	}
	if err := cw.Write(header); err != nil {
		return errors.New(errors.ExportFailed, "failed to write export", err)
	}

	for _, rec := range analysis.Records {
		row := []string{
			rec.PackageID,
			strconv.Itoa(rec.DirectDependents),
			strconv.Itoa(rec.IndirectImpact),
			strconv.Itoa(rec.TotalImpact),
			strconv.Itoa(rec.Depth),
			strconv.Itoa(rec.Stars),
			rec.State,
		}
		if err := cw.Write(row); err != nil {
			return errors.New(errors.ExportFailed, "failed to write export", err)
		}
	}
	return e.flushCSV(cw, len(analysis.Records))
}

func (e *Exporter) prioritiesCSV(w io.Writer, records []scoring.ScoredRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "package", "score", "stars", "dependencies", "rationale", "url"}
	if err := cw.Write(header); err != nil {
		return errors.New(errors.ExportFailed, "failed to write export", err)
	}

	for i, rec := range records {
		row := []string{
			strconv.Itoa(i + 1),
			rec.PackageID,
			strconv.FormatFloat(rec.Score, 'f', 4, 64),
			strconv.Itoa(rec.Stars),
			strconv.Itoa(rec.DependencyCount),
			rec.Rationale,
			rec.URL,
		}
		if err := cw.Write(row); err != nil {
			return errors.New(errors.ExportFailed, "failed to write export", err)
		}
	}
	return e.flushCSV(cw, len(records))
}

func (e *Exporter) flushCSV(cw *csv.Writer, items int) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.New(errors.ExportFailed, "failed to write export", err)
	}
	e.logger.Debug("Export written", map[string]interface{}{
		"format": string(FormatCSV),
		"items":  items,
	})
	return nil
}

func unsupported(format Format) error {
	return errors.New(errors.InvalidArgument,
		fmt.Sprintf("unsupported export format %q (expected json or csv)", string(format)), nil)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
