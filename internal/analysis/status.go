package analysis

import (
	"context"
	"time"

	"spat/internal/errors"
	"spat/internal/store"
	"spat/internal/version"
)

// StatusResponse describes the health of the data directory. Unlike Stats
// it never builds the graph, so it works on an empty dataset.
type StatusResponse struct {
	Version            string                `json:"version"`
	DatabasePath       string                `json:"databasePath"`
	SchemaVersion      int                   `json:"schemaVersion"`
	Revision           string                `json:"revision"`
	TotalPackages      int                   `json:"totalPackages"`
	ByState            map[string]int        `json:"byState,omitempty"`
	ByProcessingStatus map[string]int        `json:"byProcessingStatus,omitempty"`
	RecentRuns         []store.ProcessingLog `json:"recentRuns,omitempty"`
	QueryDurationMs    int64                 `json:"queryDurationMs"`
}

const recentRunCount = 5

// Status reports the current dataset status.
func (e *Engine) Status(ctx context.Context) (*StatusResponse, error) {
	start := time.Now()

	schema, err := e.store.SchemaVersion()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to read schema version", err)
	}
	revision, err := e.store.Revision()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to fingerprint the dataset", err)
	}
	total, err := e.store.Count()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to count packages", err)
	}

	byState, err := e.store.CountByState()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to count by state", err)
	}
	byStatus, err := e.store.CountByProcessingStatus()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to count by processing status", err)
	}

	runs, err := e.store.RecentLogs(recentRunCount)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to read processing logs", err)
	}

	states := make(map[string]int, len(byState))
	for state, count := range byState {
		states[string(state)] = count
	}
	statuses := make(map[string]int, len(byStatus))
	for status, count := range byStatus {
		statuses[string(status)] = count
	}

	return &StatusResponse{
		Version:            version.Version,
		DatabasePath:       e.store.Path(),
		SchemaVersion:      schema,
		Revision:           revision,
		TotalPackages:      total,
		ByState:            states,
		ByProcessingStatus: statuses,
		RecentRuns:         runs,
		QueryDurationMs:    time.Since(start).Milliseconds(),
	}, nil
}
