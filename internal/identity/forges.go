package identity

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ForgesFile is the default filename for the forge registry.
const ForgesFile = "forges.toml"

// ForgeRegistry is the on-disk registry of additional forge domains,
// stored as forges.toml in the data directory.
//
//	version = 1
//
//	[[forges]]
//	domain = "gitlab.com"
//	note = "mirrors of a few Swift packages"
type ForgeRegistry struct {
	Version int          `toml:"version"`
	Forges  []ForgeEntry `toml:"forges"`
}

// ForgeEntry declares one forge domain.
type ForgeEntry struct {
	Domain string `toml:"domain"`
	Note   string `toml:"note,omitempty"`
}

// LoadForges reads a forge registry file and returns its domains. A missing
// file is not an error: the default forges stand alone.
func LoadForges(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read forge registry: %w", err)
	}

	var registry ForgeRegistry
	if err := toml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse forge registry: %w", err)
	}

	domains := make([]string, 0, len(registry.Forges))
	for i, entry := range registry.Forges {
		if entry.Domain == "" {
			return nil, fmt.Errorf("forge registry entry %d has no domain", i)
		}
		domains = append(domains, entry.Domain)
	}
	return domains, nil
}
