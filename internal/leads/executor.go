package leads

import (
	"context"
	"fmt"
	"log/slog"

	"leadrouter/internal/jobs"
	"leadrouter/internal/metrics"
	"leadrouter/internal/model"
)

// TaskKind tags queued lead-processing tasks.
const TaskKind = "lead"

// Sink receives finished leads.
type Sink interface {
	AddLead(ctx context.Context, lead model.ProcessedLead) error
}

// Executor runs queued lead tasks: it processes the request carried in
// the task payload and stores the result.
type Executor struct {
	processor *Processor
	sink      Sink
	logger    *slog.Logger
}

func NewExecutor(p *Processor, sink Sink, logger *slog.Logger) *Executor {
	return &Executor{processor: p, sink: sink, logger: logger}
}

func (e *Executor) Execute(ctx context.Context, task jobs.Task) error {
	req, ok := task.Payload.(model.LeadRequest)
	if !ok {
		return fmt.Errorf("lead task %s: unexpected payload %T", task.ID, task.Payload)
	}

	lead, err := e.processor.Process(ctx, req)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.sink.AddLead(ctx, lead); err != nil {
		return fmt.Errorf("store lead: %w", err)
	}
	metrics.RecordLeadScored(string(lead.Priority))

	if e.logger != nil {
		e.logger.Info("lead_processed",
			"task_id", task.ID.String(),
			"score", lead.Score,
			"priority", string(lead.Priority),
			"assigned_to", lead.AssignedTo,
		)
	}
	return nil
}
