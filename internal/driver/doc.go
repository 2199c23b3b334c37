// Package driver defines the backend capabilities the engine executes
// requests against: a file driver, a shell driver and a docker driver.
//
// A Set bundles one implementation of each capability and is injected into
// the executor at construction time. Backends live in sub-packages:
//
//   - local: real filesystem, subprocesses and the docker CLI
//   - mock:  records calls and returns canned results, for tests
//   - dummy: accepts everything and always succeeds, for dry runs
package driver
