package graph

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// ResourceStats counts the paths mentioned by node footprints.
type ResourceStats struct {
	CreatedFiles int `yaml:"created_files" toml:"created_files"`
	CreatedDirs  int `yaml:"created_dirs" toml:"created_dirs"`
	ReadFiles    int `yaml:"read_files" toml:"read_files"`
	RequiredDirs int `yaml:"required_dirs" toml:"required_dirs"`
	UniquePaths  int `yaml:"unique_paths" toml:"unique_paths"`
}

// Stats summarizes the shape of a graph.
type Stats struct {
	Nodes       int            `yaml:"nodes" toml:"nodes"`
	Edges       int            `yaml:"edges" toml:"edges"`
	NodeKinds   map[string]int `yaml:"node_kinds" toml:"node_kinds"`
	StepTypes   map[string]int `yaml:"step_types" toml:"step_types"`
	EdgeKinds   map[string]int `yaml:"edge_kinds" toml:"edge_kinds"`
	Resources   ResourceStats  `yaml:"resources" toml:"resources"`
	Complexity  float64        `yaml:"complexity" toml:"complexity"`
	Fingerprint string         `yaml:"fingerprint" toml:"fingerprint"`
}

// Stats computes the graph statistics. Complexity is the mean of the edge
// density and the unique-resource density per node, rounded to two decimals.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{
		Nodes:     len(g.order),
		Edges:     len(g.edges),
		NodeKinds: map[string]int{},
		StepTypes: map[string]int{},
		EdgeKinds: map[string]int{},
	}
	unique := mapset.NewThreadUnsafeSet[string]()
	created := mapset.NewThreadUnsafeSet[string]()
	dirs := mapset.NewThreadUnsafeSet[string]()
	reads := mapset.NewThreadUnsafeSet[string]()
	required := mapset.NewThreadUnsafeSet[string]()

	hash := xxhash.New()
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Request != nil {
			s.NodeKinds[string(n.Request.Kind())]++
			fmt.Fprintf(hash, "n|%s|%s\n", id, n.Request.Describe())
		}
		s.StepTypes[string(n.StepType)]++
		created.Append(n.CreatesFiles...)
		dirs.Append(n.CreatesDirs...)
		reads.Append(n.ReadsFiles...)
		required.Append(n.RequiresDirs...)
		unique.Append(n.Resources()...)
	}
	for _, e := range g.edges {
		s.EdgeKinds[string(e.Kind)]++
		fmt.Fprintf(hash, "e|%s|%s|%s\n", e.From, e.To, e.Kind)
	}

	s.Resources = ResourceStats{
		CreatedFiles: created.Cardinality(),
		CreatedDirs:  dirs.Cardinality(),
		ReadFiles:    reads.Cardinality(),
		RequiredDirs: required.Cardinality(),
		UniquePaths:  unique.Cardinality(),
	}
	if s.Nodes > 0 {
		n := float64(s.Nodes)
		raw := (float64(s.Edges)/n + float64(s.Resources.UniquePaths)/n) / 2
		s.Complexity = math.Round(raw*100) / 100
	}
	s.Fingerprint = fmt.Sprintf("%016x", hash.Sum64())
	return s
}
