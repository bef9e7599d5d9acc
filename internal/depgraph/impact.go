package depgraph

import (
	"sort"

	"spat/internal/identity"
	"spat/internal/logging"
)

const (
	// highImpactThreshold marks packages whose migration unblocks many paths
	highImpactThreshold = 5
	// foundationalThreshold marks packages most of the corpus sits on
	foundationalThreshold = 10
)

// ImpactRecord describes how much of the corpus a single package blocks.
type ImpactRecord struct {
	PackageID         string `json:"packageId"`
	Owner             string `json:"owner"`
	Name              string `json:"name"`
	Stars             int    `json:"stars"`
	DependencyCount   int    `json:"dependencyCount"`
	DirectDependents  int    `json:"directDependents"`
	IndirectImpact    int    `json:"indirectImpact"`
	TotalImpact       int    `json:"totalImpact"`
	Depth             int    `json:"depth"`
	HasManifest       bool   `json:"hasManifest"`
	LinuxCompatible   bool   `json:"linuxCompatible"`
	AndroidCompatible bool   `json:"androidCompatible"`
	State             string `json:"state,omitempty"`
	External          bool   `json:"external,omitempty"`
}

// ImpactSummary aggregates the record set.
type ImpactSummary struct {
	TotalPackages        int `json:"totalPackages"`
	HighImpactPackages   int `json:"highImpactPackages"`
	FoundationalPackages int `json:"foundationalPackages"`
}

// ImpactAnalysis is the full analyzer output: one record per graph node,
// sorted by descending total impact, plus summary counts.
type ImpactAnalysis struct {
	Records []ImpactRecord `json:"records"`
	Summary ImpactSummary  `json:"summary"`
}

// Analyzer computes dependent impact over a built graph.
//
// indirectImpact is exact path counting with a per-path visited set: the
// set is copied at every recursive step, so a dependent reachable along two
// distinct paths (a diamond) counts once per path, while a cycle back onto
// the current path contributes 0 and terminates. Memoizing the recursion
// would only be sound on acyclic graphs, and cycles are not excluded here.
type Analyzer struct {
	graph  *Graph
	logger *logging.Logger
}

// NewAnalyzer creates an impact analyzer for a built graph.
func NewAnalyzer(graph *Graph, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		graph:  graph,
		logger: logger,
	}
}

// Analyze produces impact records for every node in the graph, externals
// included (their metadata defaults to zero values). The sort is stable and
// descending by total impact; ties keep node insertion order.
func (a *Analyzer) Analyze() *ImpactAnalysis {
	g := a.graph
	records := make([]ImpactRecord, 0, len(g.nodes))
	summary := ImpactSummary{TotalPackages: len(g.nodes)}

	for idx := range g.nodes {
		rec := a.record(idx)
		if rec.TotalImpact > highImpactThreshold {
			summary.HighImpactPackages++
		}
		if rec.DirectDependents > foundationalThreshold {
			summary.FoundationalPackages++
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalImpact > records[j].TotalImpact
	})

	a.logger.Debug("impact analysis complete", map[string]interface{}{
		"packages":     summary.TotalPackages,
		"high_impact":  summary.HighImpactPackages,
		"foundational": summary.FoundationalPackages,
	})

	return &ImpactAnalysis{Records: records, Summary: summary}
}

// Record computes the impact record for a single package. ok is false when
// the identity is not in the graph; that is an empty result, not an error.
func (a *Analyzer) Record(id identity.PackageID) (ImpactRecord, bool) {
	idx, exists := a.graph.nodeIdx[id]
	if !exists {
		return ImpactRecord{}, false
	}
	return a.record(idx), true
}

func (a *Analyzer) record(idx int) ImpactRecord {
	g := a.graph
	node := g.nodes[idx]

	direct := node.DirectDependents()
	indirect := a.indirectImpact(idx)

	rec := ImpactRecord{
		PackageID:        node.ID.String(),
		Owner:            node.ID.Owner,
		Name:             node.Name,
		DependencyCount:  node.DependsOnCount(),
		DirectDependents: direct,
		IndirectImpact:   indirect,
		TotalImpact:      direct + indirect,
		Depth:            node.Depth,
		External:         node.External,
	}
	if node.Meta != nil {
		rec.Stars = node.Meta.Stars
		rec.HasManifest = node.Meta.HasManifest
		rec.LinuxCompatible = node.Meta.LinuxCompatible
		rec.AndroidCompatible = node.Meta.AndroidCompatible
		rec.State = node.Meta.State
	}
	return rec
}

// indirectImpact counts the dependent paths of length two or more ending at
// idx: each direct dependent contributes the paths strictly above itself.
// Direct dependents are not re-counted here; totalImpact adds them once.
func (a *Analyzer) indirectImpact(idx int) int {
	count := 0
	for _, dep := range a.graph.in[idx] {
		visited := map[int]struct{}{idx: {}, dep: {}}
		count += a.dependentPaths(dep, visited)
	}
	return count
}

// dependentPaths counts paths extending upward from idx through dependents
// not yet on the current path. The visited set is copied per branch: each
// path explores with its own history.
func (a *Analyzer) dependentPaths(idx int, visited map[int]struct{}) int {
	count := 0
	for _, dep := range a.graph.in[idx] {
		if _, onPath := visited[dep]; onPath {
			continue
		}
		branch := make(map[int]struct{}, len(visited)+1)
		for k := range visited {
			branch[k] = struct{}{}
		}
		branch[dep] = struct{}{}
		count += 1 + a.dependentPaths(dep, branch)
	}
	return count
}
