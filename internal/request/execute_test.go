package request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/driver"
	"github.com/vk/contestflow/internal/driver/mock"
)

func TestExecute_Variants(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	backend := mock.New().
		On("make all", driver.Result{Stdout: "built\n"}).
		On("python3 -c print(1)", driver.Result{Stdout: "1\n"}).
		On("docker exec judge ls", driver.Result{Stdout: "main.py\n"})
	set := backend.Set()
	ctx := context.Background()

	testCases := []struct {
		name   string
		req    Request
		stdout string
	}{
		{"shell", &Shell{Argv: []string{"make", "all"}}, "built\n"},
		{"python", &Python{Code: "print(1)"}, "1\n"},
		{"docker", &Docker{Op: DockerExec, Container: "judge", Command: []string{"ls"}}, "main.py\n"},
		{"file", &File{Op: FileCopy, Path: "a", Dst: "b"}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			res, err := Execute(ctx, tc.req, set)

			// --- Assert ---
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tc.stdout, res.Stdout)
		})
	}
}

func TestExecute_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := mock.New().
		On("false", driver.Result{ReturnCode: 1, Stderr: "boom"}).
		OnError("slow", driver.ErrTimeout).
		OnError("mkdir ro", errors.New("read-only file system"))
	set := backend.Set()

	res, err := Execute(ctx, &Shell{Argv: []string{"false"}}, set)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.ReturnCode)
	assert.Equal(t, "boom", res.Stderr)

	res, err = Execute(ctx, &Shell{Argv: []string{"slow"}}, set)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, -1, res.ReturnCode)
	assert.Equal(t, driver.ErrTimeout.Error(), res.Error)

	res, err = Execute(ctx, &File{Op: FileMkdir, Path: "ro"}, set)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.ReturnCode)
	assert.Equal(t, "read-only file system", res.Stderr)
}

func TestExecute_DriverUnavailable(t *testing.T) {
	t.Parallel()

	set := &driver.Set{Shell: mock.New().Set().Shell}
	req := NewComposite("c", &Shell{Argv: []string{"true"}}, &Docker{Op: DockerPs})

	_, err := Execute(context.Background(), req, set)

	var unavailable *DriverUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "docker", unavailable.Capability)
	assert.Equal(t, KindDocker, unavailable.Kind)
	assert.EqualError(t, err, `no docker driver available for docker request "DOCKER ps"`)
}

func TestExecute_Composite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stops at the first strict failure", func(t *testing.T) {
		backend := mock.New().
			On("one", driver.Result{Stdout: "1"}).
			On("two", driver.Result{ReturnCode: 2})
		req := NewComposite("c",
			&Shell{Argv: []string{"one"}},
			&Shell{Argv: []string{"two"}},
			&Shell{Argv: []string{"three"}},
		)

		res, err := Execute(ctx, req, backend.Set())

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Len(t, res.Parts, 2, "partial results are returned")
		assert.Equal(t, "1", res.Stdout)
		assert.Equal(t, 2, res.ReturnCode)
		assert.Contains(t, res.Error, "part 1 (SHELL two) failed with return code 2")
		assert.Equal(t, []string{"one", "two"}, backend.Keys())
	})

	t.Run("tolerated failures continue", func(t *testing.T) {
		backend := mock.New().On("two", driver.Result{ReturnCode: 2})
		req := NewComposite("c",
			&Shell{Argv: []string{"one"}},
			&Shell{Common: Common{AllowFailure: true}, Argv: []string{"two"}},
			&Shell{Argv: []string{"three"}},
		)

		res, err := Execute(ctx, req, backend.Set())

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Len(t, res.Parts, 3)
		assert.Zero(t, res.ReturnCode)
	})

	t.Run("parts can use their own drivers", func(t *testing.T) {
		outer := mock.New()
		inner := mock.New()
		req := &Composite{Parts: []Part{
			{Request: &Shell{Argv: []string{"outer"}}},
			{Request: &Shell{Argv: []string{"inner"}}, Drivers: inner.Set()},
		}}

		_, err := Execute(ctx, req, outer.Set())

		require.NoError(t, err)
		assert.Equal(t, []string{"outer"}, outer.Keys())
		assert.Equal(t, []string{"inner"}, inner.Keys())
	})
}

func TestParseDockerOp(t *testing.T) {
	op, err := ParseDockerOp("RM")
	require.NoError(t, err)
	assert.Equal(t, DockerRemove, op)

	op, err = ParseDockerOp("exec")
	require.NoError(t, err)
	assert.Equal(t, DockerExec, op)

	_, err = ParseDockerOp("explode")
	assert.EqualError(t, err, `unknown docker operation "explode"`)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "SHELL make all", (&Shell{Argv: []string{"make", "all"}}).Describe())
	assert.Equal(t, "FILE copy a -> b", (&File{Op: FileCopy, Path: "a", Dst: "b"}).Describe())
	assert.Equal(t, "FILE mkdir a", (&File{Op: FileMkdir, Path: "a"}).Describe())
	assert.Equal(t, "DOCKER exec judge ls", (&Docker{Op: DockerExec, Container: "judge", Command: []string{"ls"}}).Describe())
	assert.Equal(t, "PYTHON main.py", (&Python{File: "main.py"}).Describe())
	assert.Equal(t, "PYTHON -c import os ...", (&Python{Code: "import os\nprint(1)"}).Describe())
	assert.Equal(t, "COMPOSITE(0)", NewComposite("x").Describe())
	assert.Equal(t, []string{"pypy3", "main.py", "in.txt"}, (&Python{File: "main.py", Interpreter: "pypy3", Args: []string{"in.txt"}}).Argv())
}
