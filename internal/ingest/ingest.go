// Package ingest loads tracked packages into the store from offline
// artifacts: plain URL lists, JSON metadata dumps, and checked-out manifest
// trees. Every run appends a processing log entry.
package ingest

import (
	"context"
	"fmt"
	"time"

	"spat/internal/identity"
	"spat/internal/logging"
	"spat/internal/manifest"
	"spat/internal/store"
)

const defaultWorkers = 8

// Ingestor wires the store, resolver, and manifest parser into the import
// pipeline.
type Ingestor struct {
	store    *store.Store
	resolver *identity.Resolver
	parser   *manifest.Parser
	logger   *logging.Logger
	workers  int
}

// New creates an Ingestor. A non-positive worker count falls back to the
// default.
func New(s *store.Store, resolver *identity.Resolver, parser *manifest.Parser,
	logger *logging.Logger, workers int) *Ingestor {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Ingestor{
		store:    s,
		resolver: resolver,
		parser:   parser,
		logger:   logger,
		workers:  workers,
	}
}

// Summary reports the outcome of one ingest run.
type Summary struct {
	Action     string `json:"action"`
	Processed  int    `json:"processed"`
	Added      int    `json:"added"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	DurationMs int64  `json:"durationMs"`
}

func (s *Summary) message() string {
	return fmt.Sprintf("%d added, %d updated, %d skipped, %d failed",
		s.Added, s.Updated, s.Skipped, s.Failed)
}

// finish stamps the duration and appends the run to the processing log.
func (ing *Ingestor) finish(summary *Summary, start time.Time) (*Summary, error) {
	summary.DurationMs = time.Since(start).Milliseconds()

	status := store.ProcessingCompleted
	if summary.Failed > 0 {
		status = store.ProcessingFailed
	}
	err := ing.store.AppendLog(&store.ProcessingLog{
		Action:         summary.Action,
		Status:         status,
		Message:        summary.message(),
		ItemsProcessed: summary.Processed,
		DurationMs:     summary.DurationMs,
	})
	if err != nil {
		return nil, err
	}

	ing.logger.Info("Ingest run finished", map[string]interface{}{
		"action":    summary.Action,
		"processed": summary.Processed,
		"added":     summary.Added,
		"updated":   summary.Updated,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	})
	return summary, nil
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
