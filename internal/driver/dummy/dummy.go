// Package dummy provides a driver backend that performs nothing and reports
// success for every operation. It backs dry runs and smoke tests.
package dummy

import (
	"context"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
)

// Backend implements every driver capability as a successful no-op.
type Backend struct{}

var (
	_ driver.FileDriver   = Backend{}
	_ driver.ShellDriver  = Backend{}
	_ driver.DockerDriver = dockerBackend{}
)

// NewSet returns a driver set backed entirely by the dummy backend.
func NewSet() *driver.Set {
	return &driver.Set{File: Backend{}, Shell: Backend{}, Docker: dockerBackend{}}
}

func skip(ctx context.Context, op string, args ...any) {
	ctxlog.FromContext(ctx).Debug("Dummy driver skipped operation.", append([]any{"op", op}, args...)...)
}

func (Backend) Run(ctx context.Context, cmd driver.Command) (driver.Result, error) {
	skip(ctx, "shell", "argv", cmd.Argv)
	return driver.Result{}, nil
}

func (Backend) Mkdir(ctx context.Context, p string) error {
	skip(ctx, "mkdir", "path", p)
	return nil
}

func (Backend) Touch(ctx context.Context, p string) error {
	skip(ctx, "touch", "path", p)
	return nil
}

func (Backend) Copy(ctx context.Context, src, dst string) error {
	skip(ctx, "copy", "src", src, "dst", dst)
	return nil
}

func (Backend) Move(ctx context.Context, src, dst string) error {
	skip(ctx, "move", "src", src, "dst", dst)
	return nil
}

func (Backend) CopyTree(ctx context.Context, src, dst string) error {
	skip(ctx, "copytree", "src", src, "dst", dst)
	return nil
}

func (Backend) MoveTree(ctx context.Context, src, dst string) error {
	skip(ctx, "movetree", "src", src, "dst", dst)
	return nil
}

func (Backend) Remove(ctx context.Context, p string) error {
	skip(ctx, "remove", "path", p)
	return nil
}

func (Backend) RemoveTree(ctx context.Context, p string) error {
	skip(ctx, "rmtree", "path", p)
	return nil
}

// dockerBackend is separate from Backend because both capabilities define
// Run and Remove with different signatures.
type dockerBackend struct{}

func (dockerBackend) op(ctx context.Context, name string, o driver.DockerOp) (driver.Result, error) {
	skip(ctx, "docker "+name, "container", o.Container, "image", o.Image)
	return driver.Result{}, nil
}

func (d dockerBackend) Run(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "run", o)
}
func (d dockerBackend) Exec(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "exec", o)
}
func (d dockerBackend) Build(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "build", o)
}
func (d dockerBackend) Stop(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "stop", o)
}
func (d dockerBackend) Remove(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "rm", o)
}
func (d dockerBackend) Ps(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "ps", o)
}
func (d dockerBackend) Inspect(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "inspect", o)
}
func (d dockerBackend) Cp(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "cp", o)
}
func (d dockerBackend) Logs(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.op(ctx, "logs", o)
}
