package depgraph

import (
	"spat/internal/identity"
	"spat/internal/manifest"
)

// Metadata carries the repository facts attached to a known package node.
// All fields are optional inputs sourced from the store; external
// placeholder nodes have no metadata at all.
type Metadata struct {
	Stars             int
	Forks             int
	Watchers          int
	HasManifest       bool
	LinuxCompatible   bool
	AndroidCompatible bool
	State             string
}

// Node is one package in the dependency graph.
type Node struct {
	ID   identity.PackageID
	Name string

	// Meta is nil for external placeholders (packages discovered only as
	// dependency targets).
	Meta     *Metadata
	External bool

	// Declarations holds every parsed dependency declaration, including
	// ones whose locator did not resolve. Unresolved declarations
	// contribute no edge but stay visible for counts.
	Declarations []manifest.Declaration

	// Depth is the longest outgoing hop count, set by computeDepths.
	Depth int

	dependents map[identity.PackageID]struct{}
}

// DirectDependents is the size of the dependents set (the node's in-degree).
func (n *Node) DirectDependents() int {
	return len(n.dependents)
}

// DependsOnCount is the number of declared dependencies, resolved or not.
func (n *Node) DependsOnCount() int {
	return len(n.Declarations)
}

// Edge is a directed dependency: From declares a dependency resolving to To.
// Indices point into the graph's node arena.
type Edge struct {
	From       int
	To         int
	Kind       manifest.Kind
	Constraint string
}

// Graph is a directed dependency graph over a node-index arena. Cycles are
// allowed; every traversal guards with a visited set. Node indices are
// assigned once, in insertion order, and that order is the tie-break for
// all stable sorts downstream.
type Graph struct {
	nodes   []*Node
	nodeIdx map[identity.PackageID]int

	out [][]Edge
	in  [][]int // predecessor indices, deduplicated, in arrival order

	outPos    []map[int]int // target index -> position in out[i]
	edgeCount int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIdx: make(map[identity.PackageID]int),
	}
}

// AddPackage registers a known package with its metadata and declarations,
// returning its arena index. Re-adding an identity upgrades a placeholder
// in place, so a full rebuild converges to the same node set regardless of
// input order.
func (g *Graph) AddPackage(id identity.PackageID, name string, meta *Metadata, decls []manifest.Declaration) int {
	idx := g.ensureNode(id, name)
	node := g.nodes[idx]
	node.Name = name
	node.Meta = meta
	node.External = false
	node.Declarations = decls
	return idx
}

// ensureNode returns the index for id, creating an external placeholder
// when the identity has not been seen before.
func (g *Graph) ensureNode(id identity.PackageID, name string) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return idx
	}
	if name == "" {
		name = id.Repo
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, &Node{
		ID:         id,
		Name:       name,
		External:   true,
		dependents: make(map[identity.PackageID]struct{}),
	})
	g.nodeIdx[id] = idx
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.outPos = append(g.outPos, nil)
	return idx
}

// AddEdge records that from depends on to. Duplicate (from, to) pairs
// collapse to a single edge with the last declaration's attributes. The
// target's dependents set is maintained here, edge by edge, and always
// equals its formal predecessor set.
func (g *Graph) AddEdge(from, to identity.PackageID, kind manifest.Kind, constraint string) {
	fi := g.ensureNode(from, "")
	ti := g.ensureNode(to, "")

	if pos, ok := g.outPos[fi][ti]; ok {
		g.out[fi][pos].Kind = kind
		g.out[fi][pos].Constraint = constraint
		return
	}

	if g.outPos[fi] == nil {
		g.outPos[fi] = make(map[int]int)
	}
	g.outPos[fi][ti] = len(g.out[fi])
	g.out[fi] = append(g.out[fi], Edge{From: fi, To: ti, Kind: kind, Constraint: constraint})
	g.in[ti] = append(g.in[ti], fi)
	g.nodes[ti].dependents[from] = struct{}{}
	g.edgeCount++
}

// Node returns the node for an identity.
func (g *Graph) Node(id identity.PackageID) (*Node, bool) {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil, false
	}
	return g.nodes[idx], true
}

// Nodes returns the arena in insertion order. Callers must not modify the
// returned slice.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NodeCount returns the number of nodes, external placeholders included.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Dependencies returns the outgoing edges of a node in declaration order.
func (g *Graph) Dependencies(id identity.PackageID) []Edge {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	return g.out[idx]
}

// Dependents returns the identities that declare a dependency on id.
func (g *Graph) Dependents(id identity.PackageID) []identity.PackageID {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	deps := make([]identity.PackageID, 0, len(g.in[idx]))
	for _, pi := range g.in[idx] {
		deps = append(deps, g.nodes[pi].ID)
	}
	return deps
}

// computeDepths sets every node's depth to its longest reachable hop count
// along outgoing edges. BFS with a per-node visited set keeps cycles from
// inflating the result; a node with no outgoing edges has depth 0.
func (g *Graph) computeDepths() {
	type hop struct {
		idx   int
		depth int
	}

	for i := range g.nodes {
		maxDepth := 0
		visited := make(map[int]bool, 8)
		visited[i] = true
		queue := []hop{{idx: i, depth: 0}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.depth > maxDepth {
				maxDepth = cur.depth
			}
			for _, e := range g.out[cur.idx] {
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				queue = append(queue, hop{idx: e.To, depth: cur.depth + 1})
			}
		}
		g.nodes[i].Depth = maxDepth
	}
}

// Stats summarizes the built graph.
type Stats struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	Externals int `json:"externals"`
	MaxDepth  int `json:"maxDepth"`
}

// Stats returns node, edge, and depth summaries for the graph.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes: len(g.nodes),
		Edges: g.edgeCount,
	}
	for _, n := range g.nodes {
		if n.External {
			s.Externals++
		}
		if n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
		}
	}
	return s
}
