// Package request defines the closed set of executable operations produced
// from workflow steps and executes them against an injected driver set.
//
// The set of variants is fixed: Shell, Docker, File, Python and Composite.
// Code that branches on the variant uses an exhaustive type switch; adding a
// variant means updating every switch in this package.
package request
