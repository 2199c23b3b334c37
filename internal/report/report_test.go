package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/contestflow/internal/builder"
	"github.com/vk/contestflow/internal/executor"
	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/resolver"
	"github.com/vk/contestflow/internal/step"
	"gopkg.in/yaml.v3"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, errs, _ := builder.Build(context.Background(), []step.Step{
		{Type: step.Mkdir, Args: []string{"work"}},
		{Type: step.Touch, Args: []string{"work/main.py"}},
		{Type: step.Shell, Name: "test", Args: []string{"echo", "ok"}, Cwd: "work"},
	}, resolver.Context{ExistingDirs: []string{"."}})
	require.Empty(t, errs)
	return g
}

func sampleReport() *executor.Report {
	return &executor.Report{
		Mode: executor.Sequential,
		Outcomes: []executor.Outcome{
			{NodeID: "step_0", Success: true, Duration: 3 * time.Millisecond},
			{NodeID: "step_1", Success: false, ReturnCode: 1, Error: "boom", Duration: time.Millisecond},
		},
		Aborted:    true,
		FailedNode: "step_1",
		Skipped:    []string{"test"},
		Duration:   5 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"text": Text, "YAML": YAML, " toml ": TOML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestNew_DescribesPlan(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	g := buildGraph(t)

	// --- Act ---
	doc := New("run-1", "wf.hcl", g, []error{errors.New("step 9 (bogus): unknown step type")}, []string{"injected mkdir: x"})

	// --- Assert ---
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, []string{"step 9 (bogus): unknown step type"}, doc.Errors)
	assert.Equal(t, []string{"injected mkdir: x"}, doc.Warnings)
	require.Len(t, doc.Plan.Nodes, 3)
	assert.Equal(t, "test", doc.Plan.Nodes[2].ID)
	assert.Equal(t, "SHELL echo ok", doc.Plan.Nodes[2].Request)
	assert.Contains(t, doc.Plan.Nodes[2].DependsOn, "step_0")
	assert.Equal(t, 3, doc.Plan.Stats.Nodes)
	assert.NotEmpty(t, doc.Plan.Groups)
	assert.Nil(t, doc.Execution)
}

func TestWithExecution(t *testing.T) {
	t.Parallel()

	doc := New("run-1", "wf.hcl", buildGraph(t), nil, nil).WithExecution(sampleReport())

	require.NotNil(t, doc.Execution)
	assert.Equal(t, StatusAborted, doc.Execution.Status)
	assert.Equal(t, "step_1", doc.Execution.FailedNode)
	assert.Equal(t, 1, doc.Execution.Succeeded)
	assert.Equal(t, 1, doc.Execution.Failed)
	assert.Equal(t, []string{"test"}, doc.Execution.Skipped)
	assert.Equal(t, "3ms", doc.Execution.Outcomes[0].Duration)
}

func TestRender_Text(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := New("run-1", "wf.hcl", buildGraph(t), nil, []string{"redundant mkdir removed: work"}).
		WithExecution(sampleReport())
	var buf bytes.Buffer

	// --- Act ---
	err := Render(&buf, Text, doc)

	// --- Assert ---
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Workflow: wf.hcl")
	assert.Contains(t, out, "Request Execution Graph:")
	assert.Contains(t, out, "Warnings (1):")
	assert.Contains(t, out, "  - redundant mkdir removed: work")
	assert.Contains(t, out, "Execution: aborted in 5ms (sequential)")
	assert.Contains(t, out, "OK step_0 rc=0")
	assert.Contains(t, out, "FAIL step_1 rc=1 1ms boom")
	assert.Contains(t, out, "SKIP test")
	assert.Contains(t, out, "Summary: 1 succeeded, 1 failed, 1 skipped")
	assert.NotContains(t, out, "\x1b[", "no escape codes when writing to a buffer")
}

func TestRender_TextDryRun(t *testing.T) {
	t.Parallel()

	doc := New("", "wf.hcl", buildGraph(t), nil, nil)
	doc.DryRun = true
	var buf bytes.Buffer

	require.NoError(t, Render(&buf, Text, doc))
	assert.Contains(t, buf.String(), "Dry run: nothing was executed.")
}

func TestRender_YAML(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := New("run-1", "wf.hcl", buildGraph(t), nil, nil).WithExecution(sampleReport())
	var buf bytes.Buffer

	// --- Act ---
	require.NoError(t, Render(&buf, YAML, doc))

	// --- Assert ---
	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, doc.Plan.Stats.Fingerprint, decoded.Plan.Stats.Fingerprint)
	require.NotNil(t, decoded.Execution)
	assert.Equal(t, StatusAborted, decoded.Execution.Status)
	assert.Contains(t, buf.String(), "failed_node: step_1")
}

func TestRender_TOML(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	doc := New("run-1", "wf.hcl", buildGraph(t), nil, nil)
	var buf bytes.Buffer

	// --- Act ---
	require.NoError(t, Render(&buf, TOML, doc))

	// --- Assert ---
	var decoded Document
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "wf.hcl", decoded.Workflow)
	assert.Len(t, decoded.Plan.Nodes, 3)
	assert.Nil(t, decoded.Execution)
}
