package depgraph_test

import (
	"fmt"
	"io"

	"spat/internal/depgraph"
	"spat/internal/identity"
	"spat/internal/logging"
	"spat/internal/manifest"
)

// ExampleBuilder_Build walks the whole pipeline: parse manifests, build the
// graph, rank packages by how many dependents their migration would unblock.
func ExampleBuilder_Build() {
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
	parser := manifest.NewParser(identity.NewResolver(), logger)
	builder := depgraph.NewBuilder(parser, logger)

	g := builder.Build([]depgraph.PackageInput{
		{
			ID:       identity.PackageID{Owner: "org", Repo: "app"},
			Manifest: `Package(dependencies: [.package(url: "https://github.com/org/networking", from: "1.0.0")])`,
			Meta:     depgraph.Metadata{HasManifest: true},
		},
		{
			ID:       identity.PackageID{Owner: "org", Repo: "networking"},
			Manifest: `Package(dependencies: [.package(url: "https://github.com/org/core", from: "2.0.0")])`,
			Meta:     depgraph.Metadata{HasManifest: true},
		},
		{
			ID: identity.PackageID{Owner: "org", Repo: "core"},
		},
	})

	analysis := depgraph.NewAnalyzer(g, logger).Analyze()
	top := analysis.Records[0]
	fmt.Printf("%s: direct=%d indirect=%d total=%d\n",
		top.PackageID, top.DirectDependents, top.IndirectImpact, top.TotalImpact)

	// Output: org/core: direct=1 indirect=1 total=2
}
