// Package step defines the declarative operation descriptor consumed by the
// workflow engine, together with the fixed rule table that derives the
// resource footprint (files and directories created, read or required) of
// every step type.
//
// Steps are produced by an outer step-generation layer (for this repository,
// the HCL workflow loader) and are treated as immutable values: the resolver
// and the graph builder copy them, they never modify them in place.
package step
