package resolver

import (
	"context"
	"fmt"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/step"
)

// Context carries what is known about the environment before the first step
// runs.
type Context struct {
	ExistingDirs []string
}

// Result is the outcome of dependency resolution.
type Result struct {
	Steps    []step.Step
	Warnings []string
	Injected int
	Removed  int
}

// Resolve walks steps in order, injecting a MKDIR before every step whose
// required directories are not yet established, then runs the optimization
// pass over the result. The input slice is never modified.
func Resolve(ctx context.Context, steps []step.Step, rc Context) Result {
	logger := ctxlog.FromContext(ctx)
	known := newTracker(rc.ExistingDirs)

	var res Result
	resolved := make([]step.Step, 0, len(steps))
	for _, s := range steps {
		for _, dir := range step.FootprintOf(s).RequiresDirs {
			if known.has(dir) {
				continue
			}
			logger.Debug("Injecting preparatory directory step.", "dir", dir, "before", s.String())
			resolved = append(resolved, step.NewMkdir(dir))
			res.Warnings = append(res.Warnings, fmt.Sprintf("injected mkdir: %s", dir))
			res.Injected++
			known.establish(dir)
		}
		resolved = append(resolved, s)
		known.apply(s)
	}

	optimized, warnings := Optimize(resolved)
	res.Steps = optimized
	res.Warnings = append(res.Warnings, warnings...)
	res.Removed = len(resolved) - len(optimized)

	logger.Debug("Dependency resolution finished.",
		"input_steps", len(steps),
		"resolved_steps", len(res.Steps),
		"injected", res.Injected,
		"removed", res.Removed,
	)
	return res
}

// Optimize collapses duplicate MKDIR steps inside every run of consecutive
// MKDIR steps. The first occurrence of each path survives; it becomes strict
// if any merged duplicate was strict. Any non-MKDIR step ends a run.
func Optimize(steps []step.Step) ([]step.Step, []string) {
	var (
		out      = make([]step.Step, 0, len(steps))
		warnings []string
		runStart = 0
		seen     = map[string]int{}
	)
	for _, s := range steps {
		if s.Type != step.Mkdir {
			out = append(out, s)
			runStart = len(out)
			seen = map[string]int{}
			continue
		}

		path := step.CleanPath(s.Arg(0))
		if at, dup := seen[path]; dup && at >= runStart {
			out[at] = merge(out[at], s)
			warnings = append(warnings, fmt.Sprintf("redundant mkdir removed: %s", path))
			continue
		}
		seen[path] = len(out)
		out = append(out, s)
	}
	return out, warnings
}

// merge folds a duplicate MKDIR into the surviving one.
func merge(survivor, dup step.Step) step.Step {
	if !dup.AllowFailure {
		survivor.AllowFailure = false
	}
	if dup.ShowOutput {
		survivor.ShowOutput = true
	}
	if !dup.AutoGenerated {
		survivor.AutoGenerated = false
	}
	if survivor.Name == "" {
		survivor.Name = dup.Name
	}
	return survivor
}
