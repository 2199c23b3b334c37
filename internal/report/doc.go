// Package report turns a built graph and, after execution, the executor's
// report into a document that can be printed for humans (text) or machines
// (yaml, toml).
package report
