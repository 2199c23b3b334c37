package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/contestflow/internal/request"
	"github.com/vk/contestflow/internal/step"
)

// constructor maps one step to its request.
type constructor func(s step.Step) (request.Request, error)

// constructors is the step type to request table. Every known step type has
// exactly one entry.
var constructors = map[step.Type]constructor{
	step.Mkdir:    fileConstructor(request.FileMkdir),
	step.Touch:    fileConstructor(request.FileTouch),
	step.Copy:     fileConstructor(request.FileCopy),
	step.Move:     fileConstructor(request.FileMove),
	step.CopyTree: fileConstructor(request.FileCopyTree),
	step.MoveTree: fileConstructor(request.FileMoveTree),
	step.Remove:   fileConstructor(request.FileRemove),
	step.RmTree:   fileConstructor(request.FileRmTree),
	step.Shell:    newShell,
	step.Build:    newShell,
	step.Submit:   newShell,
	step.Python:   newPython,
	step.Docker:   newDocker,
}

// newRequest validates s and builds its request.
func newRequest(index int, s step.Step) (request.Request, error) {
	if err := step.Validate(index, s); err != nil {
		return nil, err
	}
	build, ok := constructors[s.Type]
	if !ok {
		return nil, &step.ValidationError{Index: index, Type: s.Type, Reason: "no request constructor"}
	}
	req, err := build(s)
	if err != nil {
		return nil, &step.ValidationError{Index: index, Type: s.Type, Reason: err.Error()}
	}
	return req, nil
}

func common(s step.Step) request.Common {
	return request.Common{AllowFailure: s.AllowFailure, ShowOutput: s.ShowOutput, Name: s.Name}
}

func fileConstructor(op request.FileOp) constructor {
	return func(s step.Step) (request.Request, error) {
		return &request.File{Common: common(s), Op: op, Path: s.Arg(0), Dst: s.Arg(1)}, nil
	}
}

// newShell runs a single argument through `sh -c` so that shell syntax
// works; several arguments are executed directly.
func newShell(s step.Step) (request.Request, error) {
	argv := s.Args
	if len(argv) == 1 {
		argv = []string{"sh", "-c", argv[0]}
	}
	return &request.Shell{
		Common:  common(s),
		Argv:    argv,
		Cwd:     s.Cwd,
		Env:     s.Env,
		Stdin:   s.Stdin,
		Timeout: s.Timeout,
	}, nil
}

// newPython treats a leading *.py argument as a script file and anything
// else as inline code. Remaining arguments are passed to the program.
func newPython(s step.Step) (request.Request, error) {
	r := &request.Python{
		Common:      common(s),
		Args:        s.Args[1:],
		Cwd:         s.Cwd,
		Interpreter: s.Options["interpreter"],
		Env:         s.Env,
		Stdin:       s.Stdin,
		Timeout:     s.Timeout,
	}
	if strings.HasSuffix(s.Arg(0), ".py") && !strings.ContainsAny(s.Arg(0), "\n;") {
		r.File = s.Arg(0)
	} else {
		r.Code = s.Arg(0)
	}
	return r, nil
}

// dockerArity is the number of positional arguments, after the sub-op, each
// docker operation requires.
var dockerArity = map[request.DockerOp]int{
	request.DockerRun:     1,
	request.DockerExec:    2,
	request.DockerBuild:   0,
	request.DockerStop:    1,
	request.DockerRemove:  1,
	request.DockerPs:      0,
	request.DockerInspect: 1,
	request.DockerCp:      2,
	request.DockerLogs:    1,
}

func newDocker(s step.Step) (request.Request, error) {
	if len(s.Args) == 0 || s.Args[0] == "" {
		return nil, errors.New("docker step requires an operation")
	}
	op, err := request.ParseDockerOp(s.Args[0])
	if err != nil {
		return nil, err
	}
	rest := s.Args[1:]
	if want := dockerArity[op]; len(rest) < want {
		return nil, fmt.Errorf("docker %s requires at least %d argument(s), got %d", op, want, len(rest))
	}

	r := &request.Docker{
		Common:  common(s),
		Op:      op,
		Options: s.Options,
		Cwd:     s.Cwd,
		Stdin:   s.Stdin,
		Timeout: s.Timeout,
	}
	switch op {
	case request.DockerRun:
		r.Image = rest[0]
		r.Command = rest[1:]
		r.Container = s.Options["name"]
	case request.DockerBuild, request.DockerPs, request.DockerCp:
		r.Command = rest
	default:
		r.Container = rest[0]
		r.Command = rest[1:]
	}
	if len(r.Command) == 0 {
		r.Command = nil
	}
	return r, nil
}
