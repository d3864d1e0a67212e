// Package driver fans a Program out over its (tick × observatory) matrix,
// invoking Observatory, Projector, and the chart Writer for each pair on a
// fixed worker pool, grounded on the same jobs/results/wg shape the
// propagation worker pool uses for its batch fan-out.
package driver

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/star/astrograph/internal/body"
	"github.com/star/astrograph/internal/chart"
	"github.com/star/astrograph/internal/diagnostics"
	"github.com/star/astrograph/internal/errkind"
	"github.com/star/astrograph/internal/observatory"
	"github.com/star/astrograph/internal/projector"
	"github.com/star/astrograph/internal/ticks"
)

// Program is one simulation run: a tree, the observatories watching it, and
// the [Start, End) tick range stepped by Step.
type Program struct {
	Tree          *body.Tree
	Observatories []observatory.Observatory
	Start, End    ticks.Time
	Step          int64
}

// Validate checks for a non-positive step or an end that does not exceed
// start, both of which are treated as bad input.
func (p Program) Validate() error {
	if p.Step <= 0 {
		return errkind.New(errkind.BadInput, "step must be positive")
	}
	if p.End.Cmp(p.Start) <= 0 {
		return errkind.New(errkind.BadInput, "end must be greater than start")
	}
	return nil
}

// Options configures how a Program is rendered and parallelized.
type Options struct {
	Workers      int
	OutputRoot   string
	Projection   projector.Projection
	ChartOptions chart.Options
}

// DefaultOptions mirrors chart.DefaultOptions and sizes Workers to the
// available cores.
func DefaultOptions() Options {
	return Options{
		Workers:      runtime.NumCPU(),
		OutputRoot:   ".",
		Projection:   projector.Orthographic{},
		ChartOptions: chart.DefaultOptions(),
	}
}

// Result summarizes one Run: how many tasks completed, how many failed, and
// whether the run was cut short by cancellation.
type Result struct {
	TasksRun, TasksFailed int
	Cancelled             bool
}

type task struct {
	t   ticks.Time
	obs observatory.Observatory
}

type taskResult struct {
	task task
	err  error
}

// Run resolves observatories against the tree, builds the (tick ×
// observatory) task matrix, and drains it across a fixed worker pool.
// Cancellation via ctx is coarse: workers only check ctx.Done() between
// tasks, never inside one, so an in-flight render always runs to
// completion, matching the engine's documented cancellation granularity.
func Run(ctx context.Context, p Program, opts Options, logger *slog.Logger) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Projection == nil {
		opts.Projection = projector.Orthographic{}
	}

	kept := observatory.Resolve(p.Tree, p.Observatories, logger)
	if len(kept) == 0 {
		logger.Warn("no observatories resolved; nothing to render")
	}

	tasks := buildTasks(p, kept)
	logger.Info("starting simulation run",
		"ticks", len(tasks)/maxInt(len(kept), 1),
		"observatories", len(kept),
		"tasks", len(tasks),
		"workers", opts.Workers,
	)

	jobs := make(chan task, opts.Workers*2)
	results := make(chan taskResult, opts.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r := runTask(p.Tree, j, opts)
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, j := range tasks {
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var res Result
	for r := range results {
		res.TasksRun++
		if r.err != nil {
			res.TasksFailed++
			logger.Warn("task failed",
				"observatory", r.task.obs.DisplayName(),
				"tick", r.task.t.String(),
				"error", r.err,
			)
		}
	}

	if ctx.Err() != nil {
		res.Cancelled = true
		logger.Warn("run cancelled", "tasks_completed", res.TasksRun, "tasks_total", len(tasks))
	}

	logger.Info("simulation run complete",
		"tasks_run", res.TasksRun,
		"tasks_failed", res.TasksFailed,
		"cancelled", res.Cancelled,
	)

	if res.Cancelled {
		return res, errkind.New(errkind.Cancelled, "simulation run was cancelled")
	}
	return res, nil
}

func buildTasks(p Program, observatories []observatory.Observatory) []task {
	var tasks []task
	step := ticks.FromInt64(p.Step)
	for t := p.Start; t.Cmp(p.End) < 0; t = t.Add(step) {
		for _, o := range observatories {
			tasks = append(tasks, task{t: t, obs: o})
		}
	}
	return tasks
}

func runTask(tree *body.Tree, j task, opts Options) taskResult {
	start := time.Now()

	visible := observatory.Observe(tree, j.obs, j.t)
	projected := projector.Resolve(opts.Projection, visible)
	lines := projector.ResolveLines(opts.Projection, observatory.ConstellationLines(j.obs, visible))
	err := chart.Write(opts.OutputRoot, j.obs.DisplayName(), j.t, projected, lines, opts.ChartOptions)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	diagnostics.ObserveTaskDuration(time.Since(start), outcome)

	return taskResult{task: j, err: err}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
