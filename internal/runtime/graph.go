package runtime

import (
	"fmt"

	"github.com/xdsai/persephone/pkg/domain"
)

// Graph indexes story nodes by id. It is built once and never mutated.
type Graph struct {
	nodes map[string]*domain.Node
	order []string
}

// NewGraph indexes nodes in declaration order. Nodes without an id are skipped
// and duplicate ids keep their first declaration; both are reported to report.
func NewGraph(nodes []domain.Node, report func(domain.Diagnostic)) *Graph {
	g := &Graph{
		nodes: make(map[string]*domain.Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	for i := range nodes {
		n := &nodes[i]
		if n.ID == "" {
			notify(report, domain.Diagnostic{
				Kind:   domain.DiagInvalidNode,
				Detail: fmt.Sprintf("node at position %d has no id", i),
			})
			continue
		}
		if _, exists := g.nodes[n.ID]; exists {
			notify(report, domain.Diagnostic{
				Kind:   domain.DiagDuplicateNode,
				NodeID: n.ID,
				Detail: "duplicate node id, keeping the first declaration",
			})
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	return g
}

// Get returns the node with the given id.
func (g *Graph) Get(id string) (*domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is part of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of indexed nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// First returns the id of the first declared node, or "" for an empty graph.
func (g *Graph) First() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// IDs returns node ids in declaration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

func notify(report func(domain.Diagnostic), d domain.Diagnostic) {
	if report != nil {
		report(d)
	}
}
