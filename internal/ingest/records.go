package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"spat/internal/identity"
	"spat/internal/store"
)

// RecordInput is one entry of a JSON metadata dump. Compatibility flags are
// pointers so an absent flag is distinguishable from an explicit false.
type RecordInput struct {
	URL               string     `json:"url"`
	Owner             string     `json:"owner,omitempty"`
	Name              string     `json:"name,omitempty"`
	Description       string     `json:"description,omitempty"`
	Language          string     `json:"language,omitempty"`
	License           string     `json:"license,omitempty"`
	DefaultBranch     string     `json:"defaultBranch,omitempty"`
	Stars             int        `json:"stars,omitempty"`
	Forks             int        `json:"forks,omitempty"`
	Watchers          int        `json:"watchers,omitempty"`
	OpenIssues        int        `json:"openIssues,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
	PushedAt          *time.Time `json:"pushedAt,omitempty"`
	LinuxCompatible   *bool      `json:"linuxCompatible,omitempty"`
	AndroidCompatible *bool      `json:"androidCompatible,omitempty"`
	State             string     `json:"state,omitempty"`
}

// LoadRecords imports a JSON array of repository metadata. Entries without
// an owner/name pair derive them from the URL; entries whose URL resolves
// to no known forge are skipped.
func (ing *Ingestor) LoadRecords(ctx context.Context, path string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Action: "import-records"}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	var inputs []RecordInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("parsing records file %s: %w", path, err)
	}

	now := time.Now().UTC()
	for _, in := range inputs {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		summary.Processed++

		owner, name := in.Owner, in.Name
		if owner == "" || name == "" {
			id := ing.resolver.Resolve(in.URL)
			if id == nil {
				summary.Skipped++
				ing.logger.Warn("Skipping record with unresolvable url", map[string]interface{}{
					"url": in.URL,
				})
				continue
			}
			owner, name = id.Owner, id.Repo
		}

		linux := true
		if in.LinuxCompatible != nil {
			linux = *in.LinuxCompatible
		}
		android := false
		if in.AndroidCompatible != nil {
			android = *in.AndroidCompatible
		}

		lastSynced := now
		created, err := ing.store.Upsert(&store.Record{
			URL:               identity.Normalize(in.URL),
			Owner:             owner,
			Name:              name,
			Description:       in.Description,
			Language:          in.Language,
			License:           in.License,
			DefaultBranch:     in.DefaultBranch,
			Stars:             in.Stars,
			Forks:             in.Forks,
			Watchers:          in.Watchers,
			OpenIssues:        in.OpenIssues,
			CreatedAt:         in.CreatedAt,
			UpdatedAt:         in.UpdatedAt,
			PushedAt:          in.PushedAt,
			LastSynced:        &lastSynced,
			LinuxCompatible:   linux,
			AndroidCompatible: android,
			State:             store.PackageState(in.State),
			ProcessingStatus:  store.ProcessingCompleted,
		})
		if err != nil {
			summary.Failed++
			ing.logger.Error("Failed to store record", map[string]interface{}{
				"url":   in.URL,
				"error": err.Error(),
			})
			continue
		}
		if created {
			summary.Added++
		} else {
			summary.Updated++
		}
	}

	return ing.finish(summary, start)
}
