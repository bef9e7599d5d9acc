package scoring

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Weights blends the four priority factors. They don't have to sum to 1;
// the ranking only depends on their ratios.
type Weights struct {
	Popularity float64 `toml:"popularity"`
	Engagement float64 `toml:"engagement"`
	Recency    float64 `toml:"recency"`
	Simplicity float64 `toml:"simplicity"`
}

// DefaultWeights returns the standard factor blend.
func DefaultWeights() Weights {
	return Weights{
		Popularity: 0.4,
		Engagement: 0.3,
		Recency:    0.2,
		Simplicity: 0.1,
	}
}

func (w Weights) isZero() bool {
	return w.Popularity == 0 && w.Engagement == 0 && w.Recency == 0 && w.Simplicity == 0
}

// profileFile is the on-disk shape of a scoring profile:
//
//	[weights]
//	popularity = 0.5
//	engagement = 0.2
//	recency = 0.2
//	simplicity = 0.1
type profileFile struct {
	Weights Weights `toml:"weights"`
}

// LoadProfile reads a TOML scoring profile. An empty path returns the
// default weights.
func LoadProfile(path string) (Weights, error) {
	if path == "" {
		return DefaultWeights(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Weights{}, fmt.Errorf("scoring profile %s: %w", path, err)
	}

	var file profileFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Weights{}, fmt.Errorf("parsing scoring profile %s: %w", path, err)
	}
	if err := file.Weights.validate(); err != nil {
		return Weights{}, fmt.Errorf("scoring profile %s: %w", path, err)
	}
	return file.Weights, nil
}

func (w Weights) validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"popularity", w.Popularity},
		{"engagement", w.Engagement},
		{"recency", w.Recency},
		{"simplicity", w.Simplicity},
	} {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("weight %q must be a non-negative number, got %v", f.name, f.value)
		}
	}
	if w.isZero() {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}
