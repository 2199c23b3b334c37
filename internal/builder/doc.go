// Package builder turns an ordered list of workflow steps into a validated
// request execution graph.
//
// Build works in passes:
//
//  1. Validation: every input step is checked and mapped to a request
//     through the constructor table. Invalid steps are reported as
//     *step.ValidationError and dropped; they never abort the build.
//  2. Resolution: the resolver injects the MKDIR steps that missing
//     directories call for.
//  3. Node creation: one graph node per resolved step, carrying the step's
//     resource footprint.
//  4. Linking: dependency edges are inferred pairwise in step order, with
//     one edge per ordered pair chosen by priority (file creation, then
//     directory creation, then result references), followed by execution
//     order edges between adjacent conflicting nodes.
package builder
