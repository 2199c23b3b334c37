package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/vk/contestflow/internal/executor"
	"github.com/vk/contestflow/internal/graph"
)

// Format selects an output encoding.
type Format string

const (
	Text Format = "text"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, YAML, TOML:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, yaml or toml)", s)
}

// Document is everything known about one invocation.
type Document struct {
	RunID     string     `yaml:"run_id" toml:"run_id"`
	Workflow  string     `yaml:"workflow" toml:"workflow"`
	DryRun    bool       `yaml:"dry_run" toml:"dry_run"`
	Errors    []string   `yaml:"errors,omitempty" toml:"errors,omitempty"`
	Warnings  []string   `yaml:"warnings,omitempty" toml:"warnings,omitempty"`
	Plan      Plan       `yaml:"plan" toml:"plan"`
	Execution *Execution `yaml:"execution,omitempty" toml:"execution,omitempty"`

	// graph is kept for the text renderer.
	graph *graph.Graph
}

// Plan describes the graph that was (or would be) executed.
type Plan struct {
	Stats  graph.Stats `yaml:"stats" toml:"stats"`
	Nodes  []PlanNode  `yaml:"nodes" toml:"nodes"`
	Groups [][]string  `yaml:"groups,omitempty" toml:"groups,omitempty"`
}

// PlanNode is one graph node.
type PlanNode struct {
	ID        string   `yaml:"id" toml:"id"`
	Step      string   `yaml:"step" toml:"step"`
	Request   string   `yaml:"request" toml:"request"`
	DependsOn []string `yaml:"depends_on,omitempty" toml:"depends_on,omitempty"`
}

// Execution summarizes an executor report.
type Execution struct {
	Mode       string        `yaml:"mode" toml:"mode"`
	Status     string        `yaml:"status" toml:"status"`
	Duration   string        `yaml:"duration" toml:"duration"`
	FailedNode string        `yaml:"failed_node,omitempty" toml:"failed_node,omitempty"`
	Succeeded  int           `yaml:"succeeded" toml:"succeeded"`
	Failed     int           `yaml:"failed" toml:"failed"`
	Skipped    []string      `yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	Outcomes   []NodeOutcome `yaml:"outcomes" toml:"outcomes"`
}

// NodeOutcome is the recorded result of one node.
type NodeOutcome struct {
	Node       string `yaml:"node" toml:"node"`
	Success    bool   `yaml:"success" toml:"success"`
	ReturnCode int    `yaml:"return_code" toml:"return_code"`
	Tolerated  bool   `yaml:"tolerated,omitempty" toml:"tolerated,omitempty"`
	Duration   string `yaml:"duration" toml:"duration"`
	Error      string `yaml:"error,omitempty" toml:"error,omitempty"`
	Stdout     string `yaml:"stdout,omitempty" toml:"stdout,omitempty"`
	Stderr     string `yaml:"stderr,omitempty" toml:"stderr,omitempty"`
}

// Status values of an Execution.
const (
	StatusSucceeded = "succeeded"
	StatusAborted   = "aborted"
)

// New describes g together with the build diagnostics.
func New(runID, workflow string, g *graph.Graph, errs []error, warnings []string) *Document {
	doc := &Document{
		RunID:    runID,
		Workflow: workflow,
		Warnings: warnings,
		graph:    g,
	}
	for _, err := range errs {
		doc.Errors = append(doc.Errors, err.Error())
	}
	if g == nil {
		return doc
	}

	doc.Plan.Stats = g.Stats()
	for _, n := range g.Nodes() {
		deps, _ := g.DependenciesOf(n.ID)
		pn := PlanNode{ID: n.ID, Step: string(n.StepType), DependsOn: deps}
		if n.Request != nil {
			pn.Request = n.Request.Describe()
		}
		doc.Plan.Nodes = append(doc.Plan.Nodes, pn)
	}
	if groups, err := g.ParallelGroups(); err == nil {
		doc.Plan.Groups = groups
	}
	return doc
}

// WithExecution attaches the executor report.
func (d *Document) WithExecution(r *executor.Report) *Document {
	if r == nil {
		return d
	}
	succeeded, failed, _ := r.Counts()
	ex := &Execution{
		Mode:       string(r.Mode),
		Status:     StatusSucceeded,
		Duration:   roundDuration(r.Duration),
		FailedNode: r.FailedNode,
		Succeeded:  succeeded,
		Failed:     failed,
		Skipped:    r.Skipped,
	}
	if r.Aborted {
		ex.Status = StatusAborted
	}
	for _, o := range r.Outcomes {
		ex.Outcomes = append(ex.Outcomes, NodeOutcome{
			Node:       o.NodeID,
			Success:    o.Success,
			ReturnCode: o.ReturnCode,
			Tolerated:  o.Tolerated,
			Duration:   roundDuration(o.Duration),
			Error:      o.Error,
			Stdout:     o.Stdout,
			Stderr:     o.Stderr,
		})
	}
	d.Execution = ex
	return d
}

func roundDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
