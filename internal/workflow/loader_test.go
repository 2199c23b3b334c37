package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/step"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_SingleFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "workflow.hcl", `
variables {
  contest = "abc300"
  problem = "a"
}

context {
  existing_dirs = ["."]
}

step "touch" {
  args = ["work/${var.contest}/${var.problem}/main.py"]
}

step "shell" {
  name          = "test"
  args          = ["oj", "test", "-c", "python3 main.py"]
  cwd           = "work/${var.contest}/${var.problem}"
  allow_failure = true
  show_output   = true
  timeout       = "30s"
  env           = { LANG = "C" }
}

step "docker" {
  args    = ["run", "python:3.12"]
  options = {
    name    = "judge"
    detach  = true
    ports   = ["8080:80", "9090:90"]
    workdir = "/work"
  }
}
`)

	// --- Act ---
	wf, err := Load(context.Background(), path, Options{Environ: []string{}})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{path}, wf.Files)
	assert.Equal(t, []string{"."}, wf.Context.ExistingDirs)

	want := []step.Step{
		{Type: step.Touch, Args: []string{"work/abc300/a/main.py"}},
		{
			Type:         step.Shell,
			Name:         "test",
			Args:         []string{"oj", "test", "-c", "python3 main.py"},
			Cwd:          "work/abc300/a",
			AllowFailure: true,
			ShowOutput:   true,
			Timeout:      30 * time.Second,
			Env:          map[string]string{"LANG": "C"},
		},
		{
			Type: step.Docker,
			Args: []string{"run", "python:3.12"},
			Options: map[string]string{
				"name":    "judge",
				"detach":  "true",
				"ports":   "8080:80,9090:90",
				"workdir": "/work",
			},
		},
	}
	if diff := cmp.Diff(want, wf.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DirectoryMergesVariablesAcrossFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "10-steps.hcl", `
step "mkdir" {
  args = ["${var.root}/a"]
}
`)
	writeFile(t, dir, "20-more.hcl", `
step "mkdir" {
  args = ["${var.root}/b"]
}
`)
	writeFile(t, dir, "00-vars.hcl", `
variables {
  root = "contest"
}
`)

	// --- Act ---
	wf, err := Load(context.Background(), dir, Options{Environ: []string{}})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, wf.Files, 3)
	require.Len(t, wf.Steps, 2)
	assert.Equal(t, []string{"contest/a"}, wf.Steps[0].Args)
	assert.Equal(t, []string{"contest/b"}, wf.Steps[1].Args)
}

func TestLoad_VarOverridesAndEnv(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "TOKEN=from-file\n")
	path := writeFile(t, dir, "wf.hcl", `
variables {
  problem = "a"
  user    = env.USER
}

step "submit" {
  args = ["oj submit ${var.problem} --user ${var.user} --token ${env.TOKEN}"]
}
`)

	// --- Act ---
	wf, err := Load(context.Background(), path, Options{
		Vars:    map[string]string{"problem": "c"},
		EnvFile: envFile,
		Environ: []string{"USER=alice", "TOKEN=from-process"},
	})

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, wf.Steps, 1)
	assert.Equal(t, []string{"oj submit c --user alice --token from-file"}, wf.Steps[0].Args)
}

func TestLoad_PlaceholdersSurviveEvaluation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, t.TempDir(), "wf.hcl", `
step "shell" {
  name = "build"
  args = ["echo hi"]
}

step "shell" {
  args = ["echo {{build.result.stdout}}", "{{ build.return_code == 0 ? \"ok\" : \"bad\" }}"]
}
`)

	// --- Act ---
	wf, err := Load(context.Background(), path, Options{Environ: []string{}})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"echo {{build.result.stdout}}", `{{ build.return_code == 0 ? "ok" : "bad" }}`}, wf.Steps[1].Args)
}

func TestLoad_UnknownStepTypePassesThrough(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "wf.hcl", `
step "teleport" {
  args = ["x"]
}
`)

	wf, err := Load(context.Background(), path, Options{Environ: []string{}})

	require.NoError(t, err)
	require.Len(t, wf.Steps, 1)
	assert.False(t, wf.Steps[0].Type.Known())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "syntax error",
			content: `step "shell" {`,
			errText: "failed to parse workflow file",
		},
		{
			name:    "unsupported attribute",
			content: "step \"shell\" {\n  args = [\"x\"]\n  bogus = 1\n}\n",
			errText: "failed to decode workflow file",
		},
		{
			name:    "undefined variable",
			content: "step \"shell\" {\n  args = [var.missing]\n}\n",
			errText: "failed to decode workflow file",
		},
		{
			name:    "invalid timeout",
			content: "step \"shell\" {\n  args = [\"x\"]\n  timeout = \"soon\"\n}\n",
			errText: "invalid timeout",
		},
		{
			name:    "options not an object",
			content: "step \"docker\" {\n  args = [\"ps\"]\n  options = [\"a\"]\n}\n",
			errText: "options must be an object",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "wf.hcl", tc.content)

			_, err := Load(context.Background(), path, Options{Environ: []string{}})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing workflow path")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), t.TempDir(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files found")
}
