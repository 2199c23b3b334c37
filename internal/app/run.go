package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vk/contestflow/internal/builder"
	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/executor"
	"github.com/vk/contestflow/internal/report"
	"github.com/vk/contestflow/internal/workflow"
)

// ErrInvalidWorkflow is returned when the build produced validation errors
// and Config.AllowInvalid is not set.
var ErrInvalidWorkflow = errors.New("workflow contains invalid steps")

// Run loads the workflow, builds its graph and, unless this is a dry run,
// executes it. The report is written to the app's output in every case where
// a graph was built.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	ctx = a.context(ctx, runID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.", "workflow", a.config.WorkflowPath)

	wf, err := workflow.Load(ctx, a.config.WorkflowPath, workflow.Options{
		Vars:    a.config.Vars,
		EnvFile: a.config.EnvFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}
	logger.Info("Workflow loaded.", "files", len(wf.Files), "steps", len(wf.Steps))

	g, buildErrs, warnings := builder.Build(ctx, wf.Steps, wf.Context)
	for _, err := range buildErrs {
		logger.Error("Invalid workflow step.", "error", err)
	}
	for _, w := range warnings {
		logger.Warn("Workflow warning.", "warning", w)
	}

	doc := report.New(runID, a.config.WorkflowPath, g, buildErrs, warnings)
	format := report.Format(a.config.Report)

	if len(buildErrs) > 0 && !a.config.AllowInvalid {
		if err := report.Render(a.outW, format, doc); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d error(s)", ErrInvalidWorkflow, len(buildErrs))
	}

	if a.config.DryRun {
		logger.Info("Dry run requested, skipping execution.")
		doc.DryRun = true
		return report.Render(a.outW, format, doc)
	}

	if g.Len() == 0 {
		logger.Warn("No nodes found in graph, execution not required.")
		return report.Render(a.outW, format, doc)
	}

	exec := executor.New(g, a.drivers, executor.Options{
		Mode:       executor.Mode(a.config.Mode),
		MaxWorkers: a.config.Workers,
		Output:     a.nodeOutput(format),
	})
	rep, runErr := exec.Run(ctx)
	if rep == nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	if err := report.Render(a.outW, format, doc.WithExecution(rep)); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("execution interrupted: %w", runErr)
	}

	logger.Debug("App.Run method finished.")
	return rep.Err()
}

// nodeOutput is where show_output requests echo their output. Structured
// reports must stay parseable, so the echo is dropped for them.
func (a *App) nodeOutput(format report.Format) io.Writer {
	if format == report.Text {
		return a.outW
	}
	return nil
}
