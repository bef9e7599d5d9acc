// Package depgraph builds and analyzes the dependency graph of tracked
// Swift packages.
//
// The graph is a node-index arena: identities map to integer indices
// assigned once at insertion, adjacency lists are indexed slices, and
// insertion order is the tie-break for every stable sort downstream. The
// graph is directed and may contain cycles; all traversals carry a visited
// set.
//
// Basic usage:
//
//	builder := depgraph.NewBuilder(parser, logger)
//	g := builder.Build([]depgraph.PackageInput{
//	    {ID: identity.PackageID{Owner: "org", Repo: "a"}, Manifest: manifestText, Meta: meta},
//	    {ID: identity.PackageID{Owner: "org", Repo: "b"}},
//	})
//
//	analysis := depgraph.NewAnalyzer(g, logger).Analyze()
//	for _, rec := range analysis.Records {
//	    fmt.Printf("%s blocks %d packages\n", rec.PackageID, rec.TotalImpact)
//	}
//
//	tree, err := g.DependencyTree(identity.PackageID{Owner: "org", Repo: "a"}, 4)
//
// Impact semantics:
//
//   - directDependents is the size of the dependents set (in-degree).
//   - indirectImpact counts dependent paths of length two or more, with a
//     per-path visited set: diamonds count once per path, cycles stop at
//     the first revisit.
//   - totalImpact = directDependents + indirectImpact.
//
// Packages that appear only as dependency targets become external
// placeholder nodes: they carry no metadata but are counted, ranked, and
// rendered like any other node.
package depgraph
