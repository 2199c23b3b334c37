package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/vk/contestflow/internal/driver"
)

// Kind names a request variant.
type Kind string

const (
	KindShell     Kind = "shell"
	KindDocker    Kind = "docker"
	KindFile      Kind = "file"
	KindPython    Kind = "python"
	KindComposite Kind = "composite"
)

// Common holds the fields every request carries.
type Common struct {
	AllowFailure bool
	ShowOutput   bool
	Name         string
}

// Base returns the common fields.
func (c Common) Base() Common { return c }

// Request is one executable operation. The interface is sealed: only the
// types in this package implement it.
type Request interface {
	Kind() Kind
	Base() Common
	Describe() string
	isRequest()
}

// Shell runs a command line through the shell capability.
type Shell struct {
	Common
	Argv    []string
	Cwd     string
	Env     map[string]string
	Stdin   string
	Timeout time.Duration
}

func (*Shell) Kind() Kind { return KindShell }
func (*Shell) isRequest() {}
func (r *Shell) Describe() string {
	return "SHELL " + strings.Join(r.Argv, " ")
}

// DockerOp is the docker sub-operation.
type DockerOp string

const (
	DockerExec    DockerOp = "exec"
	DockerRun     DockerOp = "run"
	DockerBuild   DockerOp = "build"
	DockerStop    DockerOp = "stop"
	DockerRemove  DockerOp = "remove"
	DockerPs      DockerOp = "ps"
	DockerInspect DockerOp = "inspect"
	DockerCp      DockerOp = "cp"
	DockerLogs    DockerOp = "logs"
)

// DockerOps lists every docker sub-operation.
var DockerOps = []DockerOp{DockerExec, DockerRun, DockerBuild, DockerStop, DockerRemove, DockerPs, DockerInspect, DockerCp, DockerLogs}

// ParseDockerOp resolves a sub-operation name. "rm" is accepted for remove.
func ParseDockerOp(s string) (DockerOp, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "rm" {
		return DockerRemove, nil
	}
	for _, op := range DockerOps {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown docker operation %q", s)
}

// Docker performs a container or image operation.
type Docker struct {
	Common
	Op        DockerOp
	Container string
	Image     string
	Command   []string
	Options   map[string]string
	Cwd       string
	Stdin     string
	Timeout   time.Duration
}

func (*Docker) Kind() Kind { return KindDocker }
func (*Docker) isRequest() {}
func (r *Docker) Describe() string {
	parts := []string{"DOCKER", string(r.Op)}
	if target := r.target(); target != "" {
		parts = append(parts, target)
	}
	return strings.Join(append(parts, r.Command...), " ")
}

func (r *Docker) target() string {
	if r.Container != "" {
		return r.Container
	}
	return r.Image
}

// FileOp is the file sub-operation.
type FileOp string

const (
	FileMkdir    FileOp = "mkdir"
	FileTouch    FileOp = "touch"
	FileCopy     FileOp = "copy"
	FileMove     FileOp = "move"
	FileCopyTree FileOp = "copytree"
	FileMoveTree FileOp = "movetree"
	FileRemove   FileOp = "remove"
	FileRmTree   FileOp = "rmtree"
)

// File mutates the filesystem. Dst is only used by the transfer operations.
type File struct {
	Common
	Op   FileOp
	Path string
	Dst  string
}

func (*File) Kind() Kind { return KindFile }
func (*File) isRequest() {}
func (r *File) Describe() string {
	if r.Dst != "" {
		return fmt.Sprintf("FILE %s %s -> %s", r.Op, r.Path, r.Dst)
	}
	return fmt.Sprintf("FILE %s %s", r.Op, r.Path)
}

// DefaultInterpreter runs Python requests when none is configured.
const DefaultInterpreter = "python3"

// Python runs inline code or a script file through the shell capability.
// Exactly one of Code and File is set.
type Python struct {
	Common
	Code        string
	File        string
	Args        []string
	Cwd         string
	Interpreter string
	Env         map[string]string
	Stdin       string
	Timeout     time.Duration
}

func (*Python) Kind() Kind { return KindPython }
func (*Python) isRequest() {}
func (r *Python) Describe() string {
	if r.File != "" {
		return "PYTHON " + r.File
	}
	code := r.Code
	if i := strings.IndexByte(code, '\n'); i >= 0 {
		code = code[:i] + " ..."
	}
	return "PYTHON -c " + code
}

// Argv returns the interpreter command line.
func (r *Python) Argv() []string {
	interp := r.Interpreter
	if interp == "" {
		interp = DefaultInterpreter
	}
	argv := []string{interp}
	if r.File != "" {
		argv = append(argv, r.File)
	} else {
		argv = append(argv, "-c", r.Code)
	}
	return append(argv, r.Args...)
}

// Part is one element of a composite. A nil Drivers means the composite's
// own driver set.
type Part struct {
	Request Request
	Drivers *driver.Set
}

// Composite runs its parts in order.
type Composite struct {
	Common
	Parts []Part
}

func (*Composite) Kind() Kind { return KindComposite }
func (*Composite) isRequest() {}
func (r *Composite) Describe() string {
	return fmt.Sprintf("COMPOSITE(%d)", len(r.Parts))
}

// NewComposite wraps requests into a composite that shares one driver set.
func NewComposite(name string, reqs ...Request) *Composite {
	parts := make([]Part, len(reqs))
	for i, r := range reqs {
		parts[i] = Part{Request: r}
	}
	return &Composite{Common: Common{Name: name}, Parts: parts}
}

// Result is the observable outcome of executing a request.
type Result struct {
	Success    bool
	Stdout     string
	Stderr     string
	ReturnCode int
	// Error carries a driver error message, if any.
	Error string
	// Parts holds the results of a composite's executed parts.
	Parts []Result
}
