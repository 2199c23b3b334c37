package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
)

// waitDelay bounds how long Run waits for output pipes after the process was
// killed; grandchildren may keep them open.
const waitDelay = 2 * time.Second

// Shell runs commands as host subprocesses.
type Shell struct {
	// Root is the base for relative working directories. Empty means the
	// process working directory.
	Root string
}

var _ driver.ShellDriver = (*Shell)(nil)

// NewShell creates a shell driver rooted at root.
func NewShell(root string) *Shell {
	return &Shell{Root: root}
}

// Run implements driver.ShellDriver.
func (s *Shell) Run(ctx context.Context, cmd driver.Command) (driver.Result, error) {
	logger := ctxlog.FromContext(ctx)
	if len(cmd.Argv) == 0 {
		return driver.Result{ReturnCode: -1}, errors.New("empty command")
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = resolve(s.Root, cmd.Dir)
	c.Env = mergeEnv(os.Environ(), cmd.Env)
	c.WaitDelay = waitDelay
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	logger.Debug("Running command.", "argv", cmd.Argv, "dir", c.Dir, "timeout", cmd.Timeout)
	err := c.Run()
	res := driver.Result{Stdout: stdout.String(), Stderr: stderr.String()}

	switch {
	case err == nil:
		return res, nil
	case cmd.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.ReturnCode = -1
		res.Stderr += fmt.Sprintf("timed out after %s\n", cmd.Timeout)
		logger.Warn("Command timed out and was killed.", "argv", cmd.Argv, "timeout", cmd.Timeout)
		return res, fmt.Errorf("%s: %w after %s", cmd.Argv[0], driver.ErrTimeout, cmd.Timeout)
	case ctx.Err() != nil:
		res.ReturnCode = -1
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ReturnCode = exitErr.ExitCode()
		return res, nil
	}
	res.ReturnCode = -1
	return res, fmt.Errorf("failed to start %s: %w", cmd.Argv[0], err)
}

func resolve(root, p string) string {
	if p == "" {
		return root
	}
	if root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(extra))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
