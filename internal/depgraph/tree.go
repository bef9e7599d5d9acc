package depgraph

import (
	"fmt"

	"spat/internal/errors"
	"spat/internal/identity"
	"spat/internal/manifest"
)

// Truncation reasons attached to tree nodes.
const (
	// TruncatedMaxDepth marks a node whose children exceed the depth limit
	TruncatedMaxDepth = "max-depth"
	// TruncatedCycle marks a back-edge to a node already on the current path
	TruncatedCycle = "cycle"
)

// TreeNode is one entry in a rendered dependency tree. Kind and Constraint
// come from the edge that reached the node; the root has neither.
type TreeNode struct {
	PackageID       string        `json:"packageId"`
	Name            string        `json:"name"`
	Kind            manifest.Kind `json:"kind,omitempty"`
	Constraint      string        `json:"constraint,omitempty"`
	External        bool          `json:"external,omitempty"`
	Truncated       bool          `json:"truncated,omitempty"`
	TruncatedReason string        `json:"truncatedReason,omitempty"`
	Dependencies    []*TreeNode   `json:"dependencies,omitempty"`
}

// DependencyTree renders the dependency tree rooted at a package, following
// resolved outgoing edges. maxDepth limits the hop count from the root; a
// value of zero or less means unlimited. Cycle detection is per path, so a
// package reached along two sibling branches renders under both.
//
// A root that is not in the graph is a structured not-found error; callers
// running batches continue past it.
func (g *Graph) DependencyTree(root identity.PackageID, maxDepth int) (*TreeNode, error) {
	idx, ok := g.nodeIdx[root]
	if !ok {
		return nil, errors.New(errors.PackageNotFound,
			fmt.Sprintf("package '%s' is not in the dependency graph", root), nil).
			WithDetails(map[string]string{"package": root.String()})
	}

	onPath := map[int]bool{idx: true}
	return g.treeNode(idx, Edge{}, true, 0, maxDepth, onPath), nil
}

func (g *Graph) treeNode(idx int, via Edge, isRoot bool, depth, maxDepth int, onPath map[int]bool) *TreeNode {
	node := g.nodes[idx]
	tn := &TreeNode{
		PackageID: node.ID.String(),
		Name:      node.Name,
		External:  node.External,
	}
	if !isRoot {
		tn.Kind = via.Kind
		tn.Constraint = via.Constraint
	}

	edges := g.out[idx]
	if len(edges) == 0 {
		return tn
	}

	if maxDepth > 0 && depth >= maxDepth {
		tn.Truncated = true
		tn.TruncatedReason = TruncatedMaxDepth
		return tn
	}

	for _, e := range edges {
		if onPath[e.To] {
			target := g.nodes[e.To]
			tn.Dependencies = append(tn.Dependencies, &TreeNode{
				PackageID:       target.ID.String(),
				Name:            target.Name,
				Kind:            e.Kind,
				Constraint:      e.Constraint,
				External:        target.External,
				Truncated:       true,
				TruncatedReason: TruncatedCycle,
			})
			continue
		}
		onPath[e.To] = true
		tn.Dependencies = append(tn.Dependencies, g.treeNode(e.To, e, false, depth+1, maxDepth, onPath))
		delete(onPath, e.To)
	}
	return tn
}
