// Package inmemorystore provides a thread-safe, in-memory implementation
// of the nodestore.Store interface. It is created fresh for every run and
// holds nothing once the run is discarded.
package inmemorystore
