package depgraph

import (
	"spat/internal/identity"
	"spat/internal/logging"
	"spat/internal/manifest"
)

// ManifestParser yields the dependency declarations for manifest text.
// Satisfied by manifest.Parser and manifest.ParseCache.
type ManifestParser interface {
	Parse(content string) []manifest.Declaration
}

// PackageInput is one (identity, manifest text, metadata) triple from the
// store. Manifest is empty when the repository has no Package.swift.
type PackageInput struct {
	ID       identity.PackageID
	Name     string
	Manifest string
	Meta     Metadata
}

// Builder assembles dependency graphs from package inputs.
type Builder struct {
	parser ManifestParser
	logger *logging.Logger
}

// NewBuilder creates a builder that parses manifests with the given parser.
func NewBuilder(parser ManifestParser, logger *logging.Logger) *Builder {
	return &Builder{
		parser: parser,
		logger: logger,
	}
}

// Build constructs the dependency graph for a set of known packages. The
// build is a full rebuild and is idempotent: the same input set produces
// identical node and edge sets regardless of input order.
//
// Known packages are registered first so that edge insertion can tell a
// tracked package from an external one. Each resolved declaration then adds
// a from→to edge; declarations without a resolved identity are skipped (the
// declaration itself stays on the node for counts) and targets outside the
// input set become external placeholder nodes.
func (b *Builder) Build(inputs []PackageInput) *Graph {
	g := NewGraph()

	parsed := make([][]manifest.Declaration, len(inputs))
	for i, in := range inputs {
		var decls []manifest.Declaration
		if in.Manifest != "" {
			decls = b.parser.Parse(in.Manifest)
		}
		parsed[i] = decls

		name := in.Name
		if name == "" {
			name = in.ID.Repo
		}
		meta := in.Meta
		g.AddPackage(in.ID, name, &meta, decls)
	}

	unresolved := 0
	for i, in := range inputs {
		for _, decl := range parsed[i] {
			if decl.Resolved == nil {
				unresolved++
				b.logger.Debug("declaration locator did not resolve", map[string]interface{}{
					"package": in.ID.String(),
					"url":     decl.URL,
				})
				continue
			}
			g.AddEdge(in.ID, *decl.Resolved, decl.Kind, decl.Constraint)
		}
	}

	g.computeDepths()

	stats := g.Stats()
	b.logger.Info("dependency graph built", map[string]interface{}{
		"nodes":      stats.Nodes,
		"edges":      stats.Edges,
		"externals":  stats.Externals,
		"max_depth":  stats.MaxDepth,
		"unresolved": unresolved,
	})
	return g
}
