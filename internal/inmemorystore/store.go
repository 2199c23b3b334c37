package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/contestflow/internal/nodestore"
)

// Store is an in-memory implementation of nodestore.Store. Each node's state
// is independent, so sync.Map gives fine-grained concurrent access without a
// global lock.
type Store struct {
	states  sync.Map // node id -> nodestore.Status
	outputs sync.Map // node id -> any
}

// New creates a new, empty in-memory node state store.
func New() nodestore.Store {
	return &Store{}
}

// SetStatus updates the execution status of a specific node.
func (s *Store) SetStatus(_ context.Context, id string, status nodestore.Status) error {
	s.states.Store(id, status)
	return nil
}

// GetStatus retrieves the execution status of a specific node.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(_ context.Context, id string) (nodestore.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return nodestore.StatusPending, nil
	}
	return status.(nodestore.Status), nil
}

// SetOutput records the outcome of a node.
func (s *Store) SetOutput(_ context.Context, id string, output any) error {
	s.outputs.Store(id, output)
	return nil
}

// GetOutput retrieves the recorded outcome of a node.
func (s *Store) GetOutput(_ context.Context, id string) (any, error) {
	output, ok := s.outputs.Load(id)
	if !ok {
		return nil, nil
	}
	return output, nil
}

// Reset clears the state of every node.
func (s *Store) Reset(_ context.Context) error {
	s.states.Clear()
	s.outputs.Clear()
	return nil
}
