package local

import (
	"strconv"
	"strings"

	"github.com/vk/contestflow/internal/driver"
)

// Option keys understood by the docker argv builders. List-valued options
// are comma separated.
const (
	OptName        = "name"
	OptDetach      = "detach"
	OptInteractive = "interactive"
	OptTTY         = "tty"
	OptAutoRemove  = "rm"
	OptPorts       = "ports"
	OptVolumes     = "volumes"
	OptEnv         = "env"
	OptWorkdir     = "workdir"
	OptUser        = "user"
	OptNetwork     = "network"
	OptTag         = "tag"
	OptDockerfile  = "dockerfile"
	OptBuildArgs   = "build_args"
	OptNoCache     = "no_cache"
	OptPull        = "pull"
	OptAll         = "all"
	OptFilter      = "filter"
	OptFormat      = "format"
	OptForce       = "force"
	OptTimeout     = "timeout"
	OptTail        = "tail"
	OptTimestamps  = "timestamps"
)

type argv struct {
	args []string
	opts map[string]string
}

func newArgv(bin, sub string, opts map[string]string) *argv {
	return &argv{args: []string{bin, sub}, opts: opts}
}

func (a *argv) add(args ...string) *argv {
	a.args = append(a.args, args...)
	return a
}

func (a *argv) flag(key, flag string) *argv {
	if v, err := strconv.ParseBool(a.opts[key]); err == nil && v {
		a.args = append(a.args, flag)
	}
	return a
}

func (a *argv) value(key, flag string) *argv {
	if v := a.opts[key]; v != "" {
		a.args = append(a.args, flag, v)
	}
	return a
}

func (a *argv) list(key, flag string) *argv {
	for _, v := range strings.Split(a.opts[key], ",") {
		if v = strings.TrimSpace(v); v != "" {
			a.args = append(a.args, flag, v)
		}
	}
	return a
}

// RunArgv builds `docker run`.
func RunArgv(bin string, op driver.DockerOp) []string {
	a := newArgv(bin, "run", op.Options)
	if op.Container != "" {
		a.add("--name", op.Container)
	}
	a.flag(OptDetach, "-d").
		flag(OptInteractive, "-i").
		flag(OptTTY, "-t").
		flag(OptAutoRemove, "--rm").
		list(OptPorts, "-p").
		list(OptVolumes, "-v").
		list(OptEnv, "-e").
		value(OptWorkdir, "-w").
		value(OptUser, "-u").
		value(OptNetwork, "--network")
	return a.add(op.Image).add(op.Command...).args
}

// ExecArgv builds `docker exec`.
func ExecArgv(bin string, op driver.DockerOp) []string {
	a := newArgv(bin, "exec", op.Options)
	if op.Stdin != "" {
		a.add("-i")
	} else {
		a.flag(OptInteractive, "-i")
	}
	a.flag(OptTTY, "-t").
		list(OptEnv, "-e").
		value(OptWorkdir, "-w").
		value(OptUser, "-u")
	return a.add(op.Container).add(op.Command...).args
}

// BuildArgv builds `docker build`. The context path defaults to ".".
func BuildArgv(bin string, op driver.DockerOp) []string {
	a := newArgv(bin, "build", op.Options).
		value(OptTag, "-t").
		value(OptDockerfile, "-f").
		list(OptBuildArgs, "--build-arg").
		flag(OptNoCache, "--no-cache").
		flag(OptPull, "--pull")
	contextPath := "."
	if len(op.Command) > 0 && op.Command[0] != "" {
		contextPath = op.Command[0]
	}
	return a.add(contextPath).args
}

// StopArgv builds `docker stop`.
func StopArgv(bin string, op driver.DockerOp) []string {
	return newArgv(bin, "stop", op.Options).value(OptTimeout, "-t").add(op.Container).args
}

// RemoveArgv builds `docker rm`.
func RemoveArgv(bin string, op driver.DockerOp) []string {
	return newArgv(bin, "rm", op.Options).flag(OptForce, "-f").add(op.Container).args
}

// PsArgv builds `docker ps`.
func PsArgv(bin string, op driver.DockerOp) []string {
	return newArgv(bin, "ps", op.Options).
		flag(OptAll, "-a").
		list(OptFilter, "--filter").
		value(OptFormat, "--format").
		args
}

// InspectArgv builds `docker inspect`.
func InspectArgv(bin string, op driver.DockerOp) []string {
	target := op.Container
	if target == "" {
		target = op.Image
	}
	return newArgv(bin, "inspect", op.Options).value(OptFormat, "--format").add(target).args
}

// CpArgv builds `docker cp`. Command holds the source and destination, each
// of which may use the container:path form.
func CpArgv(bin string, op driver.DockerOp) []string {
	return newArgv(bin, "cp", op.Options).add(op.Command...).args
}

// LogsArgv builds `docker logs`.
func LogsArgv(bin string, op driver.DockerOp) []string {
	return newArgv(bin, "logs", op.Options).
		value(OptTail, "--tail").
		flag(OptTimestamps, "-t").
		add(op.Container).
		args
}
