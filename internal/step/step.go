// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Step structure, the atomic declarative unit of a
// workflow. A Step says "what" should happen (create a directory, copy a
// file, run a shell command) without saying "how": the graph builder maps
// each Step onto exactly one executable request and the executor hands that
// request to a driver.
package step

import (
	"fmt"
	"strings"
	"time"
)

// Type identifies the operation a Step performs.
type Type string

const (
	Mkdir    Type = "mkdir"
	Touch    Type = "touch"
	Copy     Type = "copy"
	Move     Type = "move"
	CopyTree Type = "copytree"
	MoveTree Type = "movetree"
	Remove   Type = "remove"
	RmTree   Type = "rmtree"
	Shell    Type = "shell"
	Build    Type = "build"
	Submit   Type = "submit"
	Python   Type = "python"
	Docker   Type = "docker"
)

// Types lists every step type the engine understands, in a stable order.
var Types = []Type{Mkdir, Touch, Copy, Move, CopyTree, MoveTree, Remove, RmTree, Shell, Build, Submit, Python, Docker}

// Known reports whether t is one of the recognized step types.
func (t Type) Known() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// IsFileOp reports whether t is handled by the file driver.
func (t Type) IsFileOp() bool {
	switch t {
	case Mkdir, Touch, Copy, Move, CopyTree, MoveTree, Remove, RmTree:
		return true
	}
	return false
}

// Step is an immutable description of one workflow action.
type Step struct {
	Type Type
	Args []string

	// Cwd, when set, is a directory that must exist before the step runs.
	Cwd string

	AllowFailure bool
	ShowOutput   bool

	// Name optionally gives the resulting graph node a stable id that other
	// steps can reference through result placeholders.
	Name string

	Env     map[string]string
	Stdin   string
	Timeout time.Duration

	// Options carries free-form flags for step types that need more than
	// positional arguments (docker).
	Options map[string]string

	// AutoGenerated marks steps injected by the dependency resolver.
	AutoGenerated bool
}

// NewMkdir returns the preparatory directory step injected by the resolver.
// It is idempotent: the directory may already exist.
func NewMkdir(path string) Step {
	return Step{
		Type:          Mkdir,
		Args:          []string{path},
		AllowFailure:  true,
		ShowOutput:    false,
		AutoGenerated: true,
	}
}

// Arg returns the i-th argument or an empty string when it is missing.
func (s Step) Arg(i int) string {
	if i < 0 || i >= len(s.Args) {
		return ""
	}
	return s.Args[i]
}

// String renders the step for logs and warnings.
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(s.Type)))
	for _, arg := range s.Args {
		fmt.Fprintf(&b, " %q", arg)
	}
	if s.Cwd != "" {
		fmt.Fprintf(&b, " (cwd=%s)", s.Cwd)
	}
	return b.String()
}
