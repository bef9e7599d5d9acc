package analysis

import (
	"context"
	"fmt"

	"spat/internal/depgraph"
	"spat/internal/errors"
)

// ImpactAnalysis ranks every tracked package by how much of the dataset
// depends on it.
func (e *Engine) ImpactAnalysis(ctx context.Context) (*depgraph.ImpactAnalysis, error) {
	graph, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return depgraph.NewAnalyzer(graph, e.logger).Analyze(), nil
}

// PackageImpact returns the impact record for one package reference.
func (e *Engine) PackageImpact(ctx context.Context, ref string) (*depgraph.ImpactRecord, error) {
	graph, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}

	id, err := e.resolveRef(ref)
	if err != nil {
		return nil, err
	}

	record, ok := depgraph.NewAnalyzer(graph, e.logger).Record(id)
	if !ok {
		return nil, errors.New(errors.PackageNotFound,
			fmt.Sprintf("package not in dependency graph: %s", id), nil).
			WithDetails(map[string]interface{}{"reference": ref})
	}
	return &record, nil
}

// DependencyTree renders the dependency tree rooted at a package reference.
// A non-positive maxDepth means unlimited.
func (e *Engine) DependencyTree(ctx context.Context, ref string, maxDepth int) (*depgraph.TreeNode, error) {
	graph, err := e.Graph(ctx)
	if err != nil {
		return nil, err
	}

	id, err := e.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	return graph.DependencyTree(id, maxDepth)
}
