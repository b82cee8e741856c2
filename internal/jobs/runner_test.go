package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// startRunner runs r in the background and returns a stop func that waits
// for the loop to exit.
func startRunner(t *testing.T, r *Runner) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Start(ctx)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("runner did not stop")
		}
	}
}

func waitForStatus(t *testing.T, q *Queue, id uuid.UUID, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if q.Status(id) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s: expected status %s, got %s", id, want, q.Status(id))
}

func TestRunner_ClassifiesOutcomes(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	r := NewRunner(q, Executors{
		"ok":    ExecutorFunc(func(ctx context.Context, task Task) error { return nil }),
		"boom":  ExecutorFunc(func(ctx context.Context, task Task) error { return errors.New("boom") }),
		"panic": ExecutorFunc(func(ctx context.Context, task Task) error { panic("bad payload") }),
	}, time.Hour, nil)

	ok := q.Enqueue("ok", nil)
	failed := q.Enqueue("boom", nil)
	panicked := q.Enqueue("panic", nil)
	unknown := q.Enqueue("nope", nil)
	after := q.Enqueue("ok", nil)

	for i := 0; i < 5; i++ {
		if err := r.RunOnce(context.Background()); err != nil {
			t.Fatalf("RunOnce error: %v", err)
		}
	}

	cases := map[uuid.UUID]Status{
		ok:       StatusCompleted,
		failed:   StatusFailed,
		panicked: StatusFailed,
		unknown:  StatusFailed,
		after:    StatusCompleted,
	}
	for id, want := range cases {
		e, found := q.Lookup(id)
		if !found {
			t.Fatalf("expected ledger entry for %s", id)
		}
		if e.Status != want {
			t.Fatalf("task %s: expected %s, got %s", id, want, e.Status)
		}
	}
}

func TestRunner_CancelWhileProcessing(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	started := make(chan struct{})
	r := NewRunner(q, Executors{
		"slow": ExecutorFunc(func(ctx context.Context, task Task) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}),
	}, time.Hour, nil)
	stop := startRunner(t, r)
	defer stop()

	id := q.Enqueue("slow", nil)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("task never started")
	}
	if got := q.Status(id); got != StatusProcessing {
		t.Fatalf("expected processing, got %s", got)
	}
	if !q.Cancel(id) {
		t.Fatalf("expected Cancel to succeed")
	}
	waitForStatus(t, q, id, StatusCanceled)
}

func TestRunner_CompletionAfterCancelStaysCanceled(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	release := make(chan struct{})
	started := make(chan struct{})
	finished := make(chan struct{})
	r := NewRunner(q, Executors{
		"stubborn": ExecutorFunc(func(ctx context.Context, task Task) error {
			close(started)
			<-release
			return nil
		}),
	}, time.Hour, nil)

	id := q.Enqueue("stubborn", nil)
	go func() {
		defer close(finished)
		_ = r.RunOnce(context.Background())
	}()

	<-started
	if !q.Cancel(id) {
		t.Fatalf("expected Cancel to succeed")
	}
	close(release)
	<-finished

	if got := q.Status(id); got != StatusCanceled {
		t.Fatalf("expected terminal canceled status to stick, got %s", got)
	}
}

func TestRunner_ProcessesSequentially(t *testing.T) {
	q := NewQueue(nil, nil, nil)

	var mu sync.Mutex
	running := 0
	maxRunning := 0
	var order []int

	r := NewRunner(q, Executors{
		"lead": ExecutorFunc(func(ctx context.Context, task Task) error {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			order = append(order, task.Payload.(int))
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}),
	}, time.Hour, nil)
	stop := startRunner(t, r)
	defer stop()

	var last uuid.UUID
	for i := 0; i < 10; i++ {
		last = q.Enqueue("lead", i)
	}
	waitForStatus(t, q, last, StatusCompleted)

	mu.Lock()
	defer mu.Unlock()
	if maxRunning != 1 {
		t.Fatalf("expected at most one task at a time, saw %d", maxRunning)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO execution, got %v", order)
		}
	}
}

func TestRunner_ShutdownCancelsInFlightTask(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	started := make(chan struct{})
	r := NewRunner(q, Executors{
		"slow": ExecutorFunc(func(ctx context.Context, task Task) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}),
	}, time.Hour, nil)

	id := q.Enqueue("slow", nil)
	stop := startRunner(t, r)
	<-started
	stop()

	if got := q.Status(id); got != StatusCanceled {
		t.Fatalf("expected canceled after shutdown, got %s", got)
	}
}

func TestRunner_SweepsAfterEachTask(t *testing.T) {
	ledger := NewLedger()
	q := NewQueue(ledger, nil, nil)
	r := NewRunner(q, Executors{
		"ok": ExecutorFunc(func(ctx context.Context, task Task) error { return nil }),
	}, time.Hour, nil)

	ledger.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }
	stale := q.Enqueue("ok", nil)
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}

	ledger.now = func() time.Time { return time.Now().UTC() }
	fresh := q.Enqueue("ok", nil)
	if err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}

	if _, ok := q.Lookup(stale); ok {
		t.Fatalf("expected stale task to be swept")
	}
	if e, ok := q.Lookup(fresh); !ok || e.Status != StatusCompleted {
		t.Fatalf("expected fresh task to be retained as completed, got %+v ok=%v", e, ok)
	}
}
