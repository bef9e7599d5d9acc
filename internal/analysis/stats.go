package analysis

import (
	"context"
	"sort"

	"spat/internal/depgraph"
	"spat/internal/errors"
)

// PackageSummary is a compact entry in stats listings.
type PackageSummary struct {
	PackageID string `json:"packageId"`
	Stars     int    `json:"stars"`
	State     string `json:"state"`
}

// StatsResponse aggregates the tracked dataset.
type StatsResponse struct {
	TotalPackages       int              `json:"totalPackages"`
	ByState             map[string]int   `json:"byState"`
	ByProcessingStatus  map[string]int   `json:"byProcessingStatus"`
	WithManifest        int              `json:"withManifest"`
	ManifestCoverage    float64          `json:"manifestCoverage"`
	AverageStars        float64          `json:"averageStars"`
	AverageDependencies float64          `json:"averageDependencies"`
	Languages           map[string]int   `json:"languages,omitempty"`
	TopStarred          []PackageSummary `json:"topStarred,omitempty"`
	Graph               depgraph.Stats   `json:"graph"`
}

const topStarredCount = 5

// Stats aggregates the dataset: state and status distributions, manifest
// coverage, star and dependency averages, and graph shape.
func (e *Engine) Stats(ctx context.Context) (*StatsResponse, error) {
	records, err := e.store.List(false)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to load tracked packages", err)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.DatasetEmpty, "no packages tracked yet", nil)
	}

	stats := &StatsResponse{
		TotalPackages:      len(records),
		ByState:            make(map[string]int),
		ByProcessingStatus: make(map[string]int),
		Languages:          make(map[string]int),
	}

	var totalStars, totalDeps int
	summaries := make([]PackageSummary, 0, len(records))
	for _, r := range records {
		stats.ByState[string(r.State)]++
		stats.ByProcessingStatus[string(r.ProcessingStatus)]++
		if r.HasManifest {
			stats.WithManifest++
		}
		if r.Language != "" {
			stats.Languages[r.Language]++
		}
		totalStars += r.Stars
		totalDeps += r.DependenciesCount
		summaries = append(summaries, PackageSummary{
			PackageID: r.PackageID().String(),
			Stars:     r.Stars,
			State:     string(r.State),
		})
	}

	stats.ManifestCoverage = float64(stats.WithManifest) / float64(len(records))
	stats.AverageStars = float64(totalStars) / float64(len(records))
	stats.AverageDependencies = float64(totalDeps) / float64(len(records))

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Stars > summaries[j].Stars
	})
	if len(summaries) > topStarredCount {
		summaries = summaries[:topStarredCount]
	}
	stats.TopStarred = summaries

	graph, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}
	stats.Graph = graph.Stats()

	return stats, nil
}
