// Package analysis provides the central engine that coordinates spat
// operations. It assembles the dependency graph from stored records and
// answers impact, tree, priority, stats, and status queries on top of it.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"spat/internal/config"
	"spat/internal/depgraph"
	"spat/internal/errors"
	"spat/internal/identity"
	"spat/internal/ingest"
	"spat/internal/logging"
	"spat/internal/manifest"
	"spat/internal/store"
)

// Engine is the central query coordinator for spat.
type Engine struct {
	store    *store.Store
	logger   *logging.Logger
	config   *config.Config
	resolver *identity.Resolver
	parser   *manifest.ParseCache
	builder  *depgraph.Builder
	dataRoot string

	// Cached dependency graph, keyed by the store revision
	graphMu  sync.Mutex
	graph    *depgraph.Graph
	graphRev string
}

// NewEngine creates an analysis engine. The resolver knows the built-in
// forges, the configured extras, and any listed in the data directory's
// forges file.
func NewEngine(dataRoot string, s *store.Store, logger *logging.Logger, cfg *config.Config) (*Engine, error) {
	forges := identity.DefaultForges()
	forges = append(forges, cfg.Resolver.Forges...)

	fileForges, err := identity.LoadForges(filepath.Join(dataRoot, config.DataDirName, identity.ForgesFile))
	if err != nil {
		return nil, err
	}
	forges = append(forges, fileForges...)

	resolver := identity.NewResolver(forges...)
	parser, err := manifest.NewParseCache(manifest.NewParser(resolver, logger), manifest.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		store:    s,
		logger:   logger,
		config:   cfg,
		resolver: resolver,
		parser:   parser,
		builder:  depgraph.NewBuilder(parser, logger),
		dataRoot: dataRoot,
	}, nil
}

// Graph returns the dependency graph for the current dataset, rebuilding it
// only when the store revision moved.
func (e *Engine) Graph(ctx context.Context) (*depgraph.Graph, error) {
	e.graphMu.Lock()
	defer e.graphMu.Unlock()

	rev, err := e.store.Revision()
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to fingerprint the dataset", err)
	}
	if e.graph != nil && e.graphRev == rev {
		return e.graph, nil
	}

	records, err := e.store.List(false)
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to load tracked packages", err)
	}
	if len(records) == 0 {
		return nil, errors.New(errors.DatasetEmpty, "no packages tracked yet", nil)
	}

	inputs := make([]depgraph.PackageInput, 0, len(records))
	for _, r := range records {
		inputs = append(inputs, depgraph.PackageInput{
			ID:       r.PackageID(),
			Name:     r.Name,
			Manifest: r.ManifestText,
			Meta: depgraph.Metadata{
				Stars:             r.Stars,
				Forks:             r.Forks,
				Watchers:          r.Watchers,
				HasManifest:       r.HasManifest,
				LinuxCompatible:   r.LinuxCompatible,
				AndroidCompatible: r.AndroidCompatible,
				State:             string(r.State),
			},
		})
	}

	e.graph = e.builder.Build(inputs)
	e.graphRev = rev
	return e.graph, nil
}

// Ingestor returns an import pipeline sharing the engine's store, resolver,
// and worker settings.
func (e *Engine) Ingestor() *ingest.Ingestor {
	return ingest.New(e.store, e.resolver,
		manifest.NewParser(e.resolver, e.logger), e.logger,
		e.config.Ingest.ManifestWorkers)
}

// resolveRef turns a CLI package reference (owner/repo or repository URL)
// into an identity.
func (e *Engine) resolveRef(ref string) (identity.PackageID, error) {
	if id, err := identity.Parse(ref); err == nil {
		return id, nil
	}
	if id := e.resolver.Resolve(ref); id != nil {
		return *id, nil
	}
	return identity.PackageID{}, errors.New(errors.InvalidArgument,
		fmt.Sprintf("cannot resolve package reference %q", ref), nil)
}
