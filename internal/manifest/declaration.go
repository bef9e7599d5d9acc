package manifest

import (
	"spat/internal/identity"
)

// Kind distinguishes runtime dependencies from test-only ones.
type Kind string

const (
	// KindRuntime is a regular package dependency
	KindRuntime Kind = "runtime"
	// KindTest is a dependency only referenced by test targets
	KindTest Kind = "test"
)

// Declaration is one `.package(...)` entry extracted from a manifest's
// dependencies section. Resolved is computed exactly once, when the
// declaration is constructed; nil means the locator matched no known forge
// and the declaration contributes no graph edge.
type Declaration struct {
	Name       string              `json:"name"`
	URL        string              `json:"url"`
	Constraint string              `json:"constraint,omitempty"`
	Kind       Kind                `json:"kind"`
	Resolved   *identity.PackageID `json:"resolved,omitempty"`
}
