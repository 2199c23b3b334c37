package step

import "fmt"

// ValidationError describes a step that could not be turned into a graph
// node. Validation errors are collected at build time and never abort the
// whole build.
type ValidationError struct {
	Index  int
	Type   Type
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Index, e.Type, e.Reason)
}

// minArgs is the minimum positional argument count per step type.
var minArgs = map[Type]int{
	Mkdir:    1,
	Touch:    1,
	Copy:     2,
	Move:     2,
	CopyTree: 2,
	MoveTree: 2,
	Remove:   1,
	RmTree:   1,
	Shell:    1,
	Build:    1,
	Submit:   1,
	Python:   1,
	Docker:   1,
}

// Validate checks the structural requirements of a step. The index is the
// step's position in the sequence being validated and is only used for
// reporting.
func Validate(index int, s Step) error {
	if !s.Type.Known() {
		return &ValidationError{Index: index, Type: s.Type, Reason: "unknown step type"}
	}
	if want := minArgs[s.Type]; len(s.Args) < want {
		return &ValidationError{
			Index:  index,
			Type:   s.Type,
			Reason: fmt.Sprintf("requires at least %d argument(s), got %d", want, len(s.Args)),
		}
	}
	for i, arg := range s.Args {
		if arg == "" && s.Type.IsFileOp() {
			return &ValidationError{Index: index, Type: s.Type, Reason: fmt.Sprintf("argument %d is empty", i)}
		}
	}
	if s.Timeout < 0 {
		return &ValidationError{Index: index, Type: s.Type, Reason: "timeout must not be negative"}
	}
	return nil
}
