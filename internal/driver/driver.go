package driver

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by shell drivers when a command exceeded its
// timeout and was killed.
var ErrTimeout = errors.New("command timed out")

// Command is a single subprocess invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     map[string]string
	Stdin   string
	Timeout time.Duration
}

// Result is what a backend observed while performing an operation.
type Result struct {
	Stdout     string
	Stderr     string
	ReturnCode int
}

// Success reports whether the operation exited cleanly.
func (r Result) Success() bool { return r.ReturnCode == 0 }

// ShellDriver runs subprocesses.
type ShellDriver interface {
	// Run executes cmd and waits for it to finish. A non-zero exit is not an
	// error: it is reported through Result.ReturnCode. The error is reserved
	// for commands that could not be started or were killed on timeout.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// FileDriver performs filesystem mutations. Every method is idempotent where
// the underlying operation allows it (Mkdir creates parents and tolerates an
// existing directory).
type FileDriver interface {
	Mkdir(ctx context.Context, path string) error
	Touch(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	CopyTree(ctx context.Context, src, dst string) error
	MoveTree(ctx context.Context, src, dst string) error
	Remove(ctx context.Context, path string) error
	RemoveTree(ctx context.Context, path string) error
}

// DockerOp describes one docker operation. Which fields are meaningful
// depends on the method it is passed to.
type DockerOp struct {
	Container string
	Image     string
	Command   []string
	Options   map[string]string
	Dir       string
	Stdin     string
	Timeout   time.Duration
}

// DockerDriver manages containers and images.
type DockerDriver interface {
	Run(ctx context.Context, op DockerOp) (Result, error)
	Exec(ctx context.Context, op DockerOp) (Result, error)
	Build(ctx context.Context, op DockerOp) (Result, error)
	Stop(ctx context.Context, op DockerOp) (Result, error)
	Remove(ctx context.Context, op DockerOp) (Result, error)
	Ps(ctx context.Context, op DockerOp) (Result, error)
	Inspect(ctx context.Context, op DockerOp) (Result, error)
	Cp(ctx context.Context, op DockerOp) (Result, error)
	Logs(ctx context.Context, op DockerOp) (Result, error)
}

// Set is the bundle of capabilities a request may need. Missing members are
// allowed; requests that need them fail preflight.
type Set struct {
	File   FileDriver
	Shell  ShellDriver
	Docker DockerDriver
}
