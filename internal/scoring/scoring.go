// Package scoring ranks tracked packages by migration priority. Scores are
// a weighted blend of normalized popularity, engagement, recency, and
// simplicity factors; the scorer is a pure function over package records
// and never touches the dependency graph.
package scoring

import (
	"sort"
	"strings"
	"time"
)

// Rationale thresholds. A record crossing one contributes the matching
// phrase to its rationale text.
const (
	highPopularityStars   = 1000
	activeCommunityForks  = 100
	lowComplexityMaxDeps  = 5
	generalPriorityPhrase = "General priority"
)

// Input is one package record to score.
type Input struct {
	PackageID       string
	Owner           string
	Name            string
	URL             string
	Stars           int
	Forks           int
	Watchers        int
	DependencyCount int
	PushedAt        *time.Time
	HasManifest     bool
}

// ScoredRecord is a ranked package with its priority score and rationale.
type ScoredRecord struct {
	PackageID       string  `json:"packageId"`
	Owner           string  `json:"owner"`
	Name            string  `json:"name"`
	URL             string  `json:"url,omitempty"`
	Stars           int     `json:"stars"`
	Forks           int     `json:"forks"`
	DependencyCount int     `json:"dependencyCount"`
	HasManifest     bool    `json:"hasManifest"`
	Score           float64 `json:"score"`
	Rationale       string  `json:"rationale"`
}

// SortOrder selects the ranking dimension.
type SortOrder string

const (
	// SortByScore orders by the weighted priority score (default)
	SortByScore SortOrder = "score"
	// SortByStars orders by raw popularity
	SortByStars SortOrder = "stars"
)

// Options configures a scoring pass.
type Options struct {
	Weights Weights
	Order   SortOrder
	// Now anchors the recency factor; the zero value means time.Now().
	Now time.Time
}

// Score ranks the inputs descending. The sort is stable: ties keep input
// order. Every normalization denominator is a maximum over the input set;
// a zero maximum makes that factor contribute 0 for all records, and a
// record without an activity timestamp contributes 0 recency.
func Score(inputs []Input, opts Options) []ScoredRecord {
	weights := opts.Weights
	if weights.isZero() {
		weights = DefaultWeights()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	maxStars, maxEngagement, maxDays, maxDeps := normalizers(inputs, now)

	records := make([]ScoredRecord, 0, len(inputs))
	for _, in := range inputs {
		score := 0.0
		if maxStars > 0 {
			score += weights.Popularity * float64(in.Stars) / maxStars
		}
		if maxEngagement > 0 {
			score += weights.Engagement * float64(in.Forks+in.Watchers) / maxEngagement
		}
		if maxDays > 0 && in.PushedAt != nil {
			score += weights.Recency * (1 - daysSince(*in.PushedAt, now)/maxDays)
		}
		if maxDeps > 0 {
			score += weights.Simplicity * (1 - float64(in.DependencyCount)/maxDeps)
		}

		records = append(records, ScoredRecord{
			PackageID:       in.PackageID,
			Owner:           in.Owner,
			Name:            in.Name,
			URL:             in.URL,
			Stars:           in.Stars,
			Forks:           in.Forks,
			DependencyCount: in.DependencyCount,
			HasManifest:     in.HasManifest,
			Score:           score,
			Rationale:       rationale(in),
		})
	}

	switch opts.Order {
	case SortByStars:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Stars > records[j].Stars
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Score > records[j].Score
		})
	}
	return records
}

// normalizers computes the per-factor maxima across the input set.
func normalizers(inputs []Input, now time.Time) (maxStars, maxEngagement, maxDays, maxDeps float64) {
	for _, in := range inputs {
		if s := float64(in.Stars); s > maxStars {
			maxStars = s
		}
		if e := float64(in.Forks + in.Watchers); e > maxEngagement {
			maxEngagement = e
		}
		if in.PushedAt != nil {
			if d := daysSince(*in.PushedAt, now); d > maxDays {
				maxDays = d
			}
		}
		if d := float64(in.DependencyCount); d > maxDeps {
			maxDeps = d
		}
	}
	return maxStars, maxEngagement, maxDays, maxDeps
}

// daysSince is clamped at zero so future timestamps don't produce negative
// ages.
func daysSince(at, now time.Time) float64 {
	days := now.Sub(at).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

// rationale builds the human explanation from threshold checks.
func rationale(in Input) string {
	var phrases []string
	if in.Stars > highPopularityStars {
		phrases = append(phrases, "High popularity")
	}
	if in.Forks > activeCommunityForks {
		phrases = append(phrases, "Active community")
	}
	if in.DependencyCount <= lowComplexityMaxDeps {
		phrases = append(phrases, "Low complexity")
	}
	if in.HasManifest {
		phrases = append(phrases, "Modern Swift package")
	}
	if len(phrases) == 0 {
		return generalPriorityPhrase
	}
	return strings.Join(phrases, "; ")
}
