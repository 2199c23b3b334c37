// Package resolver infers the directory preconditions of a step sequence and
// injects the preparatory MKDIR steps that satisfy them.
//
// The resolver keeps a running set of established directories (the context
// directories plus everything created so far). Whenever a step requires a
// directory outside that set, an idempotent MKDIR is inserted right before
// it. A final optimization pass collapses duplicate MKDIR steps that end up
// next to each other.
package resolver
