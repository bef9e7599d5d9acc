// Package overrides applies curated state updates from a YAML file. The
// file is the hand-maintained side channel for facts the pipeline can't
// discover, like a merged Android port:
//
//	updates:
//	  - package: org/pkg
//	    state: android_supported
//	    reason: upstream merged NDK support
//	    changed_by: alice
package overrides

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spat/internal/identity"
	"spat/internal/logging"
	"spat/internal/store"
)

// Update is one requested state change.
type Update struct {
	Package   string `yaml:"package"`
	State     string `yaml:"state"`
	Reason    string `yaml:"reason,omitempty"`
	ChangedBy string `yaml:"changed_by,omitempty"`
}

// File is the parsed overrides document.
type File struct {
	Updates []Update `yaml:"updates"`
}

// Load reads and parses an overrides file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing overrides file %s: %w", path, err)
	}
	return &file, nil
}

// Result summarizes an override run. Failed entries carry their message in
// Errors; the run itself keeps going.
type Result struct {
	Applied int      `json:"applied"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// Apply walks the updates in file order. A package already in the target
// state counts as skipped; an unparsable reference, an untracked package,
// or an invalid state counts as failed and never aborts the rest.
func Apply(s *store.Store, file *File, logger *logging.Logger) *Result {
	result := &Result{}

	for _, update := range file.Updates {
		id, err := identity.Parse(update.Package)
		if err != nil {
			result.fail(fmt.Sprintf("%s: %v", update.Package, err))
			continue
		}

		record, err := s.GetByOwnerRepo(id.Owner, id.Repo)
		if err != nil {
			result.fail(fmt.Sprintf("%s: %v", update.Package, err))
			continue
		}
		if record == nil {
			result.fail(fmt.Sprintf("%s: not tracked", update.Package))
			continue
		}

		changed, err := s.TransitionState(record.URL, store.PackageState(update.State),
			update.Reason, update.ChangedBy)
		if err != nil {
			result.fail(fmt.Sprintf("%s: %v", update.Package, err))
			continue
		}
		if !changed {
			result.Skipped++
			continue
		}
		result.Applied++
	}

	logger.Info("Overrides applied", map[string]interface{}{
		"applied": result.Applied,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})
	return result
}

func (r *Result) fail(message string) {
	r.Failed++
	r.Errors = append(r.Errors, message)
}
