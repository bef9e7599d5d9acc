package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"spat/internal/identity"
	"spat/internal/store"
)

// LoadURLList imports repository URLs from a text file, one per line.
// Blank lines and '#' comments are ignored; quoted lines (as produced by
// spreadsheet exports) are unwrapped. A URL no known forge pattern matches
// is skipped, not fatal.
func (ing *Ingestor) LoadURLList(ctx context.Context, path string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Action: "import-urls"}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening url list: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, `"'`)

		summary.Processed++

		id := ing.resolver.Resolve(line)
		if id == nil {
			summary.Skipped++
			ing.logger.Warn("Skipping unresolvable url", map[string]interface{}{
				"url": line,
			})
			continue
		}

		created, err := ing.store.Upsert(&store.Record{
			URL:              identity.Normalize(line),
			Owner:            id.Owner,
			Name:             id.Repo,
			LinuxCompatible:  true,
			State:            store.StateTracking,
			ProcessingStatus: store.ProcessingCompleted,
		})
		if err != nil {
			summary.Failed++
			ing.logger.Error("Failed to store url", map[string]interface{}{
				"url":   line,
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
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading url list: %w", err)
	}

	return ing.finish(summary, start)
}
