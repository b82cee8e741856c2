package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leadrouter/internal/metrics"
)

// ErrUnknownKind is returned for tasks whose kind has no executor.
var ErrUnknownKind = errors.New("UNKNOWN_TASK_KIND")

// Executor runs a single task. Implementations must honor ctx: it is
// canceled when the task is canceled or the runner shuts down.
type Executor interface {
	Execute(ctx context.Context, task Task) error
}

// ExecutorFunc adapts a plain function to Executor.
type ExecutorFunc func(ctx context.Context, task Task) error

func (f ExecutorFunc) Execute(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// Executors maps task kinds to the executor that handles them.
type Executors map[string]Executor

// Runner is the sole consumer of a Queue. It executes one task at a time,
// records the outcome, and sweeps expired ledger entries after every task.
// Throughput is therefore bounded by the slowest task.
type Runner struct {
	queue     *Queue
	executors Executors
	retention time.Duration
	logger    *slog.Logger
}

// NewRunner constructs a Runner. A non-positive retention falls back to
// DefaultRetention.
func NewRunner(q *Queue, execs Executors, retention time.Duration, logger *slog.Logger) *Runner {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Runner{
		queue:     q,
		executors: execs,
		retention: retention,
		logger:    logger,
	}
}

// Start runs the worker loop in the current goroutine until ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	if r.logger != nil {
		r.logger.Info("runner_started", "retention", r.retention.String())
	}
	for {
		err := ctx.Err()
		if err == nil {
			err = r.RunOnce(ctx)
		}
		if err != nil {
			if r.logger != nil {
				r.logger.Info("runner_stopped", "reason", err.Error())
			}
			return err
		}
	}
}

// RunOnce dequeues and processes a single task. It only returns an error
// when ctx ends before a task could be dequeued.
func (r *Runner) RunOnce(ctx context.Context) error {
	task, taskCtx, err := r.queue.Dequeue(ctx)
	if err != nil {
		return err
	}

	execCtx, cancel := context.WithCancel(taskCtx)
	stop := context.AfterFunc(ctx, cancel)

	start := time.Now()
	execErr := r.execute(execCtx, task)
	status := classify(execCtx, execErr)

	stop()
	cancel()

	r.queue.finish(task.ID, status)
	metrics.RecordTask(task.Kind, string(status))

	if r.logger != nil {
		attrs := []any{
			"task_id", task.ID.String(),
			"kind", task.Kind,
			"status", string(r.queue.Status(task.ID)),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch status {
		case StatusFailed:
			r.logger.Error("task_finished", append(attrs, "error", fmt.Sprint(execErr))...)
		case StatusCanceled:
			r.logger.Warn("task_finished", attrs...)
		default:
			r.logger.Info("task_finished", attrs...)
		}
	}

	r.queue.Sweep(time.Now().UTC(), r.retention)
	return nil
}

func (r *Runner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()

	exec, ok := r.executors[task.Kind]
	if !ok || exec == nil {
		return fmt.Errorf("%w: %s", ErrUnknownKind, task.Kind)
	}
	return exec.Execute(ctx, task)
}

// classify maps an execution result to a terminal status. Cancellation
// only counts when the task's own context was actually canceled.
func classify(ctx context.Context, err error) Status {
	switch {
	case err == nil:
		return StatusCompleted
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		return StatusCanceled
	default:
		return StatusFailed
	}
}
