// Package workflow loads workflow definitions written in HCL and turns them
// into the ordered list of steps the graph builder consumes.
//
// A workflow is one `.hcl` file or a directory of them. Files are read in
// lexical order; `variables` blocks are merged across files before any step
// is evaluated, so a step may refer to a variable declared in a later file.
// Expressions can use `var.<name>` and `env.<NAME>`.
package workflow
