package graph

import (
	"sync"

	"github.com/vk/contestflow/internal/request"
	"github.com/vk/contestflow/internal/step"
)

// EdgeKind classifies why one node must run before another.
type EdgeKind string

const (
	FileCreation      EdgeKind = "file_creation"
	DirectoryCreation EdgeKind = "directory_creation"
	ResourceAccess    EdgeKind = "resource_access"
	ExecutionOrder    EdgeKind = "execution_order"
)

// EdgeKinds lists every edge kind in priority order.
var EdgeKinds = []EdgeKind{FileCreation, DirectoryCreation, ResourceAccess, ExecutionOrder}

// Node is one executable request together with its resource footprint.
type Node struct {
	ID string
	// Index is the position of the originating step in the resolved
	// sequence.
	Index    int
	Request  request.Request
	StepType step.Type
	step.Footprint
}

// Edge states that To depends on From.
type Edge struct {
	From        string
	To          string
	Kind        EdgeKind
	Resource    string
	Description string
}

// Graph is a directed acyclic graph of request nodes. It is safe for
// concurrent reads.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	// order holds node ids by insertion; pos is its inverse.
	order []string
	pos   map[string]int
	edges []Edge
	pairs map[[2]string]struct{}
	succ  map[string][]string
	pred  map[string][]string
}
