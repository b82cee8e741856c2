package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of queued work: a kind tag naming the executor that runs
// it plus the parameters that executor needs.
type Task struct {
	ID         uuid.UUID
	Kind       string
	Payload    any
	EnqueuedAt time.Time
}

type queuedTask struct {
	task Task
	ctx  context.Context
}

// Queue is an in-process FIFO of pending tasks with a status ledger and a
// cancellation registry. Any number of producers may enqueue; a single
// consumer is expected to dequeue.
type Queue struct {
	ledger   *Ledger
	registry *Registry
	logger   *slog.Logger

	mu     sync.Mutex
	items  []queuedTask
	notify chan struct{}
}

// NewQueue wires a queue on top of the given ledger and registry. Nil
// arguments get fresh empty instances.
func NewQueue(ledger *Ledger, registry *Registry, logger *slog.Logger) *Queue {
	if ledger == nil {
		ledger = NewLedger()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Queue{
		ledger:   ledger,
		registry: registry,
		logger:   logger,
		notify:   make(chan struct{}, 1),
	}
}

func (q *Queue) logInfo(msg string, args ...any) {
	if q.logger != nil {
		q.logger.Info(msg, args...)
	}
}

// newTaskID prefers uuidv7 so IDs sort by enqueue time.
func newTaskID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}

// Enqueue registers a new queued task and returns its ID without
// blocking.
func (q *Queue) Enqueue(kind string, payload any) uuid.UUID {
	id := newTaskID()
	ctx := q.registry.Register(context.Background(), id)
	q.ledger.Create(id)

	q.mu.Lock()
	q.items = append(q.items, queuedTask{
		task: Task{ID: id, Kind: kind, Payload: payload, EnqueuedAt: time.Now().UTC()},
		ctx:  ctx,
	})
	depth := len(q.items)
	q.mu.Unlock()

	q.signal()
	q.logInfo("task_enqueued", "task_id", id.String(), "kind", kind, "depth", depth)
	return id
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue blocks until a task is available or ctx is done. The returned
// context is the task's own cancellation context.
func (q *Queue) Dequeue(ctx context.Context) (Task, context.Context, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			next := q.items[0]
			q.items[0] = queuedTask{}
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()

			if remaining > 0 {
				q.signal()
			}
			// A task canceled while queued is already terminal and stays so.
			q.ledger.Transition(next.task.ID, StatusProcessing)
			return next.task, next.ctx, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Task{}, nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Cancel triggers the cancellation handle for id and marks it canceled.
// It reports false when id has no handle (unknown, finished or evicted).
func (q *Queue) Cancel(id uuid.UUID) bool {
	if !q.registry.Cancel(id) {
		return false
	}
	q.ledger.Transition(id, StatusCanceled)
	q.logInfo("task_cancel_requested", "task_id", id.String())
	return true
}

// Status returns the recorded status for id. Unknown IDs read as failed.
func (q *Queue) Status(id uuid.UUID) Status {
	if e, ok := q.ledger.Get(id); ok {
		return e.Status
	}
	return StatusFailed
}

// Lookup returns the full ledger entry for id.
func (q *Queue) Lookup(id uuid.UUID) (Entry, bool) {
	return q.ledger.Get(id)
}

// Len returns the number of tasks waiting to be dequeued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// finish releases the handle of a task and records its terminal status.
// The handle goes first so a concurrent Cancel either wins (and the entry
// stays canceled) or reports not found.
func (q *Queue) finish(id uuid.UUID, status Status) {
	q.registry.Remove(id)
	q.ledger.Transition(id, status)
}
