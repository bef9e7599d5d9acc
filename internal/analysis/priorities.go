package analysis

import (
	"context"
	"path/filepath"

	"spat/internal/errors"
	"spat/internal/scoring"
)

// PriorityOptions configures a priority ranking query.
type PriorityOptions struct {
	// Limit caps the returned records; non-positive means all.
	Limit int
	// Order selects the ranking dimension (score by default).
	Order scoring.SortOrder
	// Profile is a TOML weight profile path overriding the configured one.
	Profile string
}

// PriorityResponse is the ranked migration priority list.
type PriorityResponse struct {
	Records []scoring.ScoredRecord `json:"records"`
	Total   int                    `json:"total"`
	Weights scoring.Weights        `json:"weights"`
}

// Priorities ranks the tracked packages by migration priority.
func (e *Engine) Priorities(ctx context.Context, opts PriorityOptions) (*PriorityResponse, error) {
	records, err := e.store.List(false)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to load tracked packages", err)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.DatasetEmpty, "no packages tracked yet", nil)
	}

	weights, err := scoring.LoadProfile(e.profilePath(opts.Profile))
	if err != nil {
		return nil, errors.New(errors.InvalidArgument, "invalid scoring profile", err)
	}

	inputs := make([]scoring.Input, 0, len(records))
	for _, r := range records {
		inputs = append(inputs, scoring.Input{
			PackageID:       r.PackageID().String(),
			Owner:           r.Owner,
			Name:            r.Name,
			URL:             r.URL,
			Stars:           r.Stars,
			Forks:           r.Forks,
			Watchers:        r.Watchers,
			DependencyCount: r.DependenciesCount,
			PushedAt:        r.PushedAt,
			HasManifest:     r.HasManifest,
		})
	}

	scored := scoring.Score(inputs, scoring.Options{Weights: weights, Order: opts.Order})
	total := len(scored)
	if opts.Limit > 0 && len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	return &PriorityResponse{Records: scored, Total: total, Weights: weights}, nil
}

// profilePath picks the effective scoring profile: the explicit override,
// else the configured one, resolved against the data root when relative.
func (e *Engine) profilePath(override string) string {
	path := override
	if path == "" {
		path = e.config.Scoring.Profile
	}
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dataRoot, path)
	}
	return path
}
