package request

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
)

// DriverUnavailableError is returned when a request needs a capability the
// driver set does not provide.
type DriverUnavailableError struct {
	Kind       Kind
	Capability string
	Request    string
}

// Error implements the error interface.
func (e *DriverUnavailableError) Error() string {
	return fmt.Sprintf("no %s driver available for %s request %q", e.Capability, e.Kind, e.Request)
}

// Capability names the driver a request variant executes on.
func Capability(req Request) string {
	switch r := req.(type) {
	case *Shell, *Python:
		return "shell"
	case *Docker:
		return "docker"
	case *File:
		return "file"
	case *Composite:
		return "composite"
	default:
		panic(fmt.Sprintf("request: unhandled variant %T", r))
	}
}

// Check verifies that drivers can serve req, recursing into composite
// parts. It returns a *DriverUnavailableError for the first gap found.
func Check(req Request, drivers *driver.Set) error {
	unavailable := func(capability string) error {
		return &DriverUnavailableError{Kind: req.Kind(), Capability: capability, Request: req.Describe()}
	}
	if drivers == nil {
		drivers = &driver.Set{}
	}
	switch r := req.(type) {
	case *Shell, *Python:
		if drivers.Shell == nil {
			return unavailable("shell")
		}
	case *Docker:
		if drivers.Docker == nil {
			return unavailable("docker")
		}
	case *File:
		if drivers.File == nil {
			return unavailable("file")
		}
	case *Composite:
		for _, part := range r.Parts {
			set := drivers
			if part.Drivers != nil {
				set = part.Drivers
			}
			if err := Check(part.Request, set); err != nil {
				return err
			}
		}
	default:
		panic(fmt.Sprintf("request: unhandled variant %T", r))
	}
	return nil
}

// Execute runs req against drivers. Operational failures are reported
// through Result; the error is non-nil only when a required driver is
// missing.
func Execute(ctx context.Context, req Request, drivers *driver.Set) (Result, error) {
	if err := Check(req, drivers); err != nil {
		return Result{ReturnCode: -1, Error: err.Error()}, err
	}

	switch r := req.(type) {
	case *Shell:
		return fromDriver(drivers.Shell.Run(ctx, driver.Command{
			Argv:    r.Argv,
			Dir:     r.Cwd,
			Env:     r.Env,
			Stdin:   r.Stdin,
			Timeout: r.Timeout,
		})), nil
	case *Python:
		return fromDriver(drivers.Shell.Run(ctx, driver.Command{
			Argv:    r.Argv(),
			Dir:     r.Cwd,
			Env:     r.Env,
			Stdin:   r.Stdin,
			Timeout: r.Timeout,
		})), nil
	case *Docker:
		return executeDocker(ctx, r, drivers.Docker), nil
	case *File:
		return fromError(executeFile(ctx, r, drivers.File)), nil
	case *Composite:
		return executeComposite(ctx, r, drivers)
	default:
		panic(fmt.Sprintf("request: unhandled variant %T", r))
	}
}

func fromDriver(res driver.Result, err error) Result {
	out := Result{
		Success:    err == nil && res.Success(),
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		ReturnCode: res.ReturnCode,
	}
	if err != nil {
		out.Error = err.Error()
		if out.ReturnCode == 0 {
			out.ReturnCode = -1
		}
	}
	return out
}

func fromError(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	return Result{Stderr: err.Error(), ReturnCode: 1, Error: err.Error()}
}

func executeFile(ctx context.Context, r *File, fd driver.FileDriver) error {
	switch r.Op {
	case FileMkdir:
		return fd.Mkdir(ctx, r.Path)
	case FileTouch:
		return fd.Touch(ctx, r.Path)
	case FileCopy:
		return fd.Copy(ctx, r.Path, r.Dst)
	case FileMove:
		return fd.Move(ctx, r.Path, r.Dst)
	case FileCopyTree:
		return fd.CopyTree(ctx, r.Path, r.Dst)
	case FileMoveTree:
		return fd.MoveTree(ctx, r.Path, r.Dst)
	case FileRemove:
		return fd.Remove(ctx, r.Path)
	case FileRmTree:
		return fd.RemoveTree(ctx, r.Path)
	}
	return fmt.Errorf("unknown file operation %q", r.Op)
}

func executeDocker(ctx context.Context, r *Docker, dd driver.DockerDriver) Result {
	op := driver.DockerOp{
		Container: r.Container,
		Image:     r.Image,
		Command:   r.Command,
		Options:   r.Options,
		Dir:       r.Cwd,
		Stdin:     r.Stdin,
		Timeout:   r.Timeout,
	}
	var call func(context.Context, driver.DockerOp) (driver.Result, error)
	switch r.Op {
	case DockerExec:
		call = dd.Exec
	case DockerRun:
		call = dd.Run
	case DockerBuild:
		call = dd.Build
	case DockerStop:
		call = dd.Stop
	case DockerRemove:
		call = dd.Remove
	case DockerPs:
		call = dd.Ps
	case DockerInspect:
		call = dd.Inspect
	case DockerCp:
		call = dd.Cp
	case DockerLogs:
		call = dd.Logs
	default:
		return fromError(fmt.Errorf("unknown docker operation %q", r.Op))
	}
	return fromDriver(call(ctx, op))
}

// executeComposite runs parts sequentially and stops at the first failing
// part that does not allow failure. The partial results are returned.
func executeComposite(ctx context.Context, r *Composite, drivers *driver.Set) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	out := Result{Success: true}
	for i, part := range r.Parts {
		set := drivers
		if part.Drivers != nil {
			set = part.Drivers
		}
		res, err := Execute(ctx, part.Request, set)
		var unavailable *DriverUnavailableError
		if errors.As(err, &unavailable) {
			return out, err
		}
		out.Parts = append(out.Parts, res)
		out.Stdout += res.Stdout
		out.Stderr += res.Stderr
		out.ReturnCode = res.ReturnCode

		if !res.Success && !part.Request.Base().AllowFailure {
			logger.Debug("Composite part failed, stopping.", "part", i, "request", part.Request.Describe())
			out.Success = false
			out.Error = res.Error
			if out.Error == "" {
				out.Error = fmt.Sprintf("part %d (%s) failed with return code %d", i, part.Request.Describe(), res.ReturnCode)
			}
			return out, nil
		}
	}
	out.ReturnCode = 0
	return out, nil
}
