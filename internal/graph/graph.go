package graph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateEdge is returned when an edge between the same ordered pair
// already exists.
var ErrDuplicateEdge = errors.New("duplicate edge")

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		pos:   make(map[string]int),
		pairs: make(map[[2]string]struct{}),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}
}

// AddNode registers n. Node ids must be unique.
func (g *Graph) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return errors.New("node must have an id")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("node already exists: %s", n.ID)
	}
	g.nodes[n.ID] = n
	g.pos[n.ID] = len(g.order)
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge records that e.To depends on e.From. Self edges, edges touching
// unknown nodes and repeated ordered pairs are rejected.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == e.To {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", e.From, e.To)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("source node not found: %s", e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("destination node not found: %s", e.To)
	}
	key := [2]string{e.From, e.To}
	if _, dup := g.pairs[key]; dup {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, e.From, e.To)
	}

	g.pairs[key] = struct{}{}
	g.edges = append(g.edges, e)
	g.succ[e.From] = g.insertSorted(g.succ[e.From], e.To)
	g.pred[e.To] = g.insertSorted(g.pred[e.To], e.From)
	return nil
}

// insertSorted keeps adjacency lists ordered by insertion position.
func (g *Graph) insertSorted(ids []string, id string) []string {
	i, _ := slices.BinarySearchFunc(ids, g.pos[id], func(have string, want int) int {
		return g.pos[have] - want
	})
	return slices.Insert(ids, i, id)
}

// HasEdge reports whether an edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.pairs[[2]string{from, to}]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// IDs returns node ids in insertion order.
func (g *Graph) IDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns the edges in the order they were added.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.edges)
}

// DependenciesOf returns the ids of the nodes id directly depends on.
func (g *Graph) DependenciesOf(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(g.pred[id]), nil
}

// DependentsOf returns the ids of the nodes that directly depend on id.
func (g *Graph) DependentsOf(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(g.succ[id]), nil
}
