package local

import (
	"context"
	"strings"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
)

// DefaultDockerBinary is the docker client used when none is configured.
const DefaultDockerBinary = "docker"

// Docker drives containers through the docker command-line client. Every
// operation is a subprocess started through the wrapped shell driver.
type Docker struct {
	Shell  driver.ShellDriver
	Binary string
}

var _ driver.DockerDriver = (*Docker)(nil)

// NewDocker creates a docker driver on top of shell.
func NewDocker(shell driver.ShellDriver) *Docker {
	return &Docker{Shell: shell, Binary: DefaultDockerBinary}
}

func (d *Docker) bin() string {
	if d.Binary == "" {
		return DefaultDockerBinary
	}
	return d.Binary
}

func (d *Docker) run(ctx context.Context, argv []string, op driver.DockerOp) (driver.Result, error) {
	return d.Shell.Run(ctx, driver.Command{
		Argv:    argv,
		Dir:     op.Dir,
		Stdin:   op.Stdin,
		Timeout: op.Timeout,
	})
}

// containerState returns the docker state of a named container, or an empty
// string when it does not exist.
func (d *Docker) containerState(ctx context.Context, name string) string {
	res, err := d.run(ctx, InspectArgv(d.bin(), driver.DockerOp{
		Container: name,
		Options:   map[string]string{OptFormat: "{{.State.Status}}"},
	}), driver.DockerOp{})
	if err != nil || !res.Success() {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// Run starts a container. A named container that is already running is
// reused; a stopped one is removed first so the name can be taken again.
func (d *Docker) Run(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	logger := ctxlog.FromContext(ctx)
	if op.Container != "" {
		switch state := d.containerState(ctx, op.Container); state {
		case "running":
			logger.Info("Reusing running container.", "container", op.Container)
			return driver.Result{Stdout: op.Container + "\n"}, nil
		case "exited", "created", "dead", "paused":
			logger.Debug("Removing stale container before run.", "container", op.Container, "state", state)
			if _, err := d.Remove(ctx, driver.DockerOp{
				Container: op.Container,
				Options:   map[string]string{OptForce: "true"},
			}); err != nil {
				return driver.Result{ReturnCode: -1}, err
			}
		}
	}
	return d.run(ctx, RunArgv(d.bin(), op), op)
}

func (d *Docker) Exec(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, ExecArgv(d.bin(), op), op)
}

func (d *Docker) Build(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, BuildArgv(d.bin(), op), op)
}

func (d *Docker) Stop(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, StopArgv(d.bin(), op), op)
}

func (d *Docker) Remove(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, RemoveArgv(d.bin(), op), op)
}

func (d *Docker) Ps(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, PsArgv(d.bin(), op), op)
}

func (d *Docker) Inspect(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, InspectArgv(d.bin(), op), op)
}

func (d *Docker) Cp(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, CpArgv(d.bin(), op), op)
}

func (d *Docker) Logs(ctx context.Context, op driver.DockerOp) (driver.Result, error) {
	return d.run(ctx, LogsArgv(d.bin(), op), op)
}
