package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"spat/internal/manifest"
	"spat/internal/store"
)

// manifestFile is one discovered Package.swift with its read outcome.
type manifestFile struct {
	owner   string
	repo    string
	content string
	err     error
}

// AttachManifests walks a checkout tree laid out as <dir>/<owner>/<repo>/
// Package.swift, reads the manifests concurrently, and attaches each to
// its tracked record. Manifests for untracked packages are skipped.
func (ing *Ingestor) AttachManifests(ctx context.Context, dir string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Action: "attach-manifests"}

	matches, err := filepath.Glob(filepath.Join(dir, "*", "*", "Package.swift"))
	if err != nil {
		return nil, fmt.Errorf("scanning manifest tree: %w", err)
	}

	// Read files concurrently; per-file failures land in the result slot so
	// one unreadable manifest doesn't abort the run.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	results := make([]manifestFile, len(matches))
	for i, path := range matches {
		g.Go(func() error {
			if err := checkCancelled(gctx); err != nil {
				return err
			}
			repoDir := filepath.Dir(path)
			data, err := os.ReadFile(path)
			results[i] = manifestFile{
				owner:   filepath.Base(filepath.Dir(repoDir)),
				repo:    filepath.Base(repoDir),
				content: string(data),
				err:     err,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, mf := range results {
		summary.Processed++

		if mf.err != nil {
			summary.Failed++
			ing.logger.Error("Failed to read manifest", map[string]interface{}{
				"package": mf.owner + "/" + mf.repo,
				"error":   mf.err.Error(),
			})
			continue
		}

		record, err := ing.store.GetByOwnerRepo(mf.owner, mf.repo)
		if err != nil {
			summary.Failed++
			ing.logger.Error("Failed to look up record", map[string]interface{}{
				"package": mf.owner + "/" + mf.repo,
				"error":   err.Error(),
			})
			continue
		}
		if record == nil {
			summary.Skipped++
			ing.logger.Debug("Manifest for untracked package", map[string]interface{}{
				"package": mf.owner + "/" + mf.repo,
			})
			continue
		}

		declarations := ing.parser.Parse(mf.content)
		toolsVersion := manifest.ExtractToolsVersion(mf.content)

		if err := ing.store.SetManifest(record.URL, mf.content, toolsVersion, len(declarations)); err != nil {
			summary.Failed++
			ing.logger.Error("Failed to attach manifest", map[string]interface{}{
				"package": mf.owner + "/" + mf.repo,
				"error":   err.Error(),
			})
			continue
		}
		if err := ing.store.SetProcessingStatus(record.URL, store.ProcessingCompleted); err != nil {
			summary.Failed++
			continue
		}
		summary.Updated++
	}

	return ing.finish(summary, start)
}
