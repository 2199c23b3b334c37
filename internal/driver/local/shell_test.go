package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/driver"
)

func TestShell_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("captures stdout and exit code", func(t *testing.T) {
		t.Parallel()
		res, err := NewShell("").Run(ctx, driver.Command{Argv: []string{"sh", "-c", "echo out; echo err >&2; exit 3"}})
		require.NoError(t, err)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Equal(t, 3, res.ReturnCode)
		assert.False(t, res.Success())
	})

	t.Run("passes stdin and env", func(t *testing.T) {
		t.Parallel()
		res, err := NewShell("").Run(ctx, driver.Command{
			Argv:  []string{"sh", "-c", `read line; echo "$line-$GREETING"`},
			Env:   map[string]string{"GREETING": "hello"},
			Stdin: "abc\n",
		})
		require.NoError(t, err)
		assert.Equal(t, "abc-hello\n", res.Stdout)
		assert.True(t, res.Success())
	})

	t.Run("resolves relative dir against root", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

		res, err := NewShell(root).Run(ctx, driver.Command{Argv: []string{"pwd"}, Dir: "sub"})

		require.NoError(t, err)
		want, _ := filepath.EvalSymlinks(filepath.Join(root, "sub"))
		got, _ := filepath.EvalSymlinks(res.Stdout[:len(res.Stdout)-1])
		assert.Equal(t, want, got)
	})

	t.Run("kills the process on timeout", func(t *testing.T) {
		t.Parallel()
		start := time.Now()

		res, err := NewShell("").Run(ctx, driver.Command{Argv: []string{"sleep", "5"}, Timeout: 100 * time.Millisecond})

		require.Error(t, err)
		assert.True(t, errors.Is(err, driver.ErrTimeout))
		assert.Equal(t, -1, res.ReturnCode)
		assert.Contains(t, res.Stderr, "timed out after 100ms")
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("reports a missing binary", func(t *testing.T) {
		t.Parallel()
		res, err := NewShell("").Run(ctx, driver.Command{Argv: []string{"definitely-not-a-binary-xyz"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to start")
		assert.Equal(t, -1, res.ReturnCode)
	})

	t.Run("rejects an empty command", func(t *testing.T) {
		t.Parallel()
		_, err := NewShell("").Run(ctx, driver.Command{})
		assert.EqualError(t, err, "empty command")
	})
}
