// Package mock provides a recording driver backend for tests. Every call is
// recorded in order and answered with a canned response looked up by the
// call's key: the joined argv for shell commands, "<op> <args...>" for file
// operations and "docker <op> <target> <command...>" for docker operations.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vk/contestflow/internal/driver"
)

// Call is one recorded invocation.
type Call struct {
	Capability string
	Key        string
}

// Response is a canned answer.
type Response struct {
	Result driver.Result
	Err    error
}

// Backend records calls and answers them from Responses, falling back to
// Default for unknown keys.
type Backend struct {
	// Delay is slept inside every call, which makes overlapping calls
	// observable through MaxInFlight.
	Delay time.Duration

	mu          sync.Mutex
	responses   map[string]Response
	fallback    Response
	calls       []Call
	inFlight    int
	maxInFlight int
}

// New returns a backend that answers every call with success.
func New() *Backend {
	return &Backend{responses: make(map[string]Response)}
}

// On registers the result returned for key.
func (b *Backend) On(key string, res driver.Result) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[key] = Response{Result: res}
	return b
}

// OnError registers an error returned for key.
func (b *Backend) OnError(key string, err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[key] = Response{Result: driver.Result{ReturnCode: -1}, Err: err}
	return b
}

// Default sets the response for keys without a registered answer.
func (b *Backend) Default(res Response) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = res
	return b
}

// Calls returns a copy of the recorded calls in invocation order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Keys returns the keys of the recorded calls in invocation order.
func (b *Backend) Keys() []string {
	calls := b.Calls()
	keys := make([]string, len(calls))
	for i, c := range calls {
		keys[i] = c.Key
	}
	return keys
}

// MaxInFlight is the highest number of calls observed running at once.
func (b *Backend) MaxInFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}

// Set exposes the backend through every driver capability.
func (b *Backend) Set() *driver.Set {
	return &driver.Set{
		File:   &files{b: b},
		Shell:  &shell{b: b},
		Docker: &docker{b: b},
	}
}

func (b *Backend) call(ctx context.Context, capability, key string) (driver.Result, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Capability: capability, Key: key})
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	resp, ok := b.responses[key]
	if !ok {
		resp = b.fallback
	}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}()

	if b.Delay > 0 {
		select {
		case <-time.After(b.Delay):
		case <-ctx.Done():
			return driver.Result{ReturnCode: -1}, ctx.Err()
		}
	}
	return resp.Result, resp.Err
}

func join(parts ...string) string {
	return strings.Join(parts, " ")
}

type shell struct{ b *Backend }

func (s *shell) Run(ctx context.Context, cmd driver.Command) (driver.Result, error) {
	return s.b.call(ctx, "shell", join(cmd.Argv...))
}

type files struct{ b *Backend }

func (f *files) do(ctx context.Context, parts ...string) error {
	res, err := f.b.call(ctx, "file", join(parts...))
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("exit status %d: %s", res.ReturnCode, res.Stderr)
	}
	return nil
}

func (f *files) Mkdir(ctx context.Context, p string) error      { return f.do(ctx, "mkdir", p) }
func (f *files) Touch(ctx context.Context, p string) error      { return f.do(ctx, "touch", p) }
func (f *files) Copy(ctx context.Context, s, d string) error     { return f.do(ctx, "copy", s, d) }
func (f *files) Move(ctx context.Context, s, d string) error     { return f.do(ctx, "move", s, d) }
func (f *files) CopyTree(ctx context.Context, s, d string) error { return f.do(ctx, "copytree", s, d) }
func (f *files) MoveTree(ctx context.Context, s, d string) error { return f.do(ctx, "movetree", s, d) }
func (f *files) Remove(ctx context.Context, p string) error     { return f.do(ctx, "remove", p) }
func (f *files) RemoveTree(ctx context.Context, p string) error { return f.do(ctx, "rmtree", p) }

type docker struct{ b *Backend }

func (d *docker) do(ctx context.Context, op string, o driver.DockerOp) (driver.Result, error) {
	target := o.Container
	if target == "" {
		target = o.Image
	}
	parts := []string{"docker", op}
	if target != "" {
		parts = append(parts, target)
	}
	parts = append(parts, o.Command...)
	return d.b.call(ctx, "docker", join(parts...))
}

func (d *docker) Run(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "run", o)
}
func (d *docker) Exec(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "exec", o)
}
func (d *docker) Build(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "build", o)
}
func (d *docker) Stop(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "stop", o)
}
func (d *docker) Remove(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "rm", o)
}
func (d *docker) Ps(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "ps", o)
}
func (d *docker) Inspect(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "inspect", o)
}
func (d *docker) Cp(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "cp", o)
}
func (d *docker) Logs(ctx context.Context, o driver.DockerOp) (driver.Result, error) {
	return d.do(ctx, "logs", o)
}
