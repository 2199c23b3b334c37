package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/app"
)

func TestParse_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{
		"-mode", "parallel",
		"-workers", "8",
		"-backend", "dummy",
		"-report", "yaml",
		"-log-level", "debug",
		"-dry-run",
		"-var", "contest=abc300",
		"-var", "problem=a=b",
		"workflows/abc",
	}
	var out bytes.Buffer

	// --- Act ---
	cfg, shouldExit, err := Parse(args, &out)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, shouldExit)
	want := &app.Config{
		WorkflowPath: "workflows/abc",
		Root:         ".",
		Mode:         "parallel",
		Workers:      8,
		Backend:      "dummy",
		LogFormat:    "text",
		LogLevel:     "debug",
		Report:       "yaml",
		DryRun:       true,
		Vars:         map[string]string{"contest": "abc300", "problem": "a=b"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_WorkflowFlagPrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "long flag wins", args: []string{"-workflow", "a.hcl", "-w", "b.hcl", "c.hcl"}, want: "a.hcl"},
		{name: "shorthand beats positional", args: []string{"-w", "b.hcl", "c.hcl"}, want: "b.hcl"},
		{name: "positional", args: []string{"c.hcl"}, want: "c.hcl"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, _, err := Parse(tc.args, &bytes.Buffer{})

			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.WorkflowPath)
		})
	}
}

func TestParse_ShouldExit(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer

		cfg, shouldExit, err := Parse(args, &out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		errText string
	}{
		{name: "unknown flag", args: []string{"-bogus"}, errText: "flag provided but not defined: -bogus"},
		{name: "malformed var", args: []string{"-var", "novalue", "wf.hcl"}, errText: "expected key=value"},
		{name: "invalid mode", args: []string{"-mode", "fast", "wf.hcl"}, errText: "invalid mode fast"},
		{name: "invalid log format", args: []string{"-log-format", "xml", "wf.hcl"}, errText: "invalid log-format xml"},
		{name: "invalid workers", args: []string{"-workers", "-3", "wf.hcl"}, errText: "invalid workers -3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.errText)
		})
	}
}
