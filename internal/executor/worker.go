package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/nodestore"
	"github.com/vk/contestflow/internal/request"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"
)

// runWave runs the nodes of one wave and returns when all of them have
// finished. A single-node wave runs inline; larger waves use a worker pool
// scoped to the wave.
func (e *Executor) runWave(ctx context.Context, wave []string) {
	if len(wave) == 1 {
		e.runNode(ctx, wave[0])
		return
	}

	var g errgroup.Group
	g.SetLimit(min(e.opts.MaxWorkers, len(wave)))
	for _, id := range wave {
		g.Go(func() error {
			e.runNode(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
}

// runNode executes a single node, records its outcome and returns it.
func (e *Executor) runNode(ctx context.Context, id string) (out Outcome) {
	logger := ctxlog.FromContext(ctx).With("node", id)
	n, ok := e.graph.Node(id)
	if !ok {
		out = Outcome{NodeID: id, ReturnCode: -1, Error: "node not found"}
		e.record(ctx, out)
		return out
	}

	e.setStatus(ctx, id, nodestore.StatusRunning)
	out = Outcome{NodeID: id, AttemptedAt: time.Now()}
	var allowFailure bool

	defer func() {
		if r := recover(); r != nil {
			out.Success = false
			out.ReturnCode = -1
			out.Error = fmt.Sprintf("panic: %v", r)
			out.Tolerated = allowFailure
			out.Duration = time.Since(out.AttemptedAt)
			logger.Error("🔥 Node panicked.", "panic", r)
			e.record(ctx, out)
		}
	}()

	req := request.Substitute(n.Request, e.lookup)
	allowFailure = req.Base().AllowFailure

	logger.Info("▶️ Starting node.", "kind", req.Kind(), "request", req.Describe())
	res, err := request.Execute(ctx, req, e.drivers)
	out.Duration = time.Since(out.AttemptedAt)
	out.Success = res.Success
	out.Stdout = res.Stdout
	out.Stderr = res.Stderr
	out.ReturnCode = res.ReturnCode
	out.Error = res.Error
	if err != nil && out.Error == "" {
		out.Error = err.Error()
	}
	out.Tolerated = !out.Success && allowFailure

	if req.Base().ShowOutput {
		e.echo(id, res)
	}

	switch {
	case out.Success:
		logger.Info("✅ Node finished.", "duration", out.Duration)
	case out.Tolerated:
		logger.Warn("Node failed, continuing because failure is allowed.", "return_code", out.ReturnCode, "error", out.Error)
	default:
		logger.Error("🔥 Node failed.", "return_code", out.ReturnCode, "error", out.Error, "stderr", strings.TrimSpace(out.Stderr))
	}

	e.record(ctx, out)
	return out
}

// lookup returns the result object of a node that has already run.
func (e *Executor) lookup(id string) (cty.Value, bool) {
	o, ok := e.outcome(id)
	if !ok {
		return cty.NilVal, false
	}
	return request.Result{
		Success:    o.Success,
		Stdout:     o.Stdout,
		Stderr:     o.Stderr,
		ReturnCode: o.ReturnCode,
		Error:      o.Error,
	}.Value(), true
}

// echo writes the output of a show_output request without interleaving it
// with other nodes.
func (e *Executor) echo(id string, res request.Result) {
	if e.opts.Output == nil || (res.Stdout == "" && res.Stderr == "") {
		return
	}
	e.outputMu.Lock()
	defer e.outputMu.Unlock()
	fmt.Fprintf(e.opts.Output, "--- %s ---\n", id)
	if res.Stdout != "" {
		fmt.Fprint(e.opts.Output, ensureNewline(res.Stdout))
	}
	if res.Stderr != "" {
		fmt.Fprint(e.opts.Output, ensureNewline(res.Stderr))
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
