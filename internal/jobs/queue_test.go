package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestQueue_EnqueueDequeueFIFO(t *testing.T) {
	q := NewQueue(nil, nil, nil)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, q.Enqueue("lead", i))
	}
	if q.Len() != 5 {
		t.Fatalf("expected depth 5, got %d", q.Len())
	}
	for _, id := range ids {
		if got := q.Status(id); got != StatusQueued {
			t.Fatalf("expected %s queued, got %s", id, got)
		}
	}

	for i, want := range ids {
		task, taskCtx, err := q.Dequeue(context.Background())
		if err != nil {
			t.Fatalf("Dequeue error: %v", err)
		}
		if task.ID != want {
			t.Fatalf("dequeue %d: expected %s, got %s", i, want, task.ID)
		}
		if task.Payload.(int) != i {
			t.Fatalf("dequeue %d: unexpected payload %v", i, task.Payload)
		}
		if taskCtx == nil || taskCtx.Err() != nil {
			t.Fatalf("expected live task context")
		}
		if got := q.Status(task.ID); got != StatusProcessing {
			t.Fatalf("expected processing after dequeue, got %s", got)
		}
	}
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue(nil, nil, nil)

	got := make(chan uuid.UUID, 1)
	go func() {
		task, _, err := q.Dequeue(context.Background())
		if err == nil {
			got <- task.ID
		}
	}()

	select {
	case <-got:
		t.Fatalf("Dequeue returned before anything was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	id := q.Enqueue("lead", nil)
	select {
	case dequeued := <-got:
		if dequeued != id {
			t.Fatalf("expected %s, got %s", id, dequeued)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Dequeue did not wake up after Enqueue")
	}
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, _, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestQueue_ConcurrentProducersExactlyOnce(t *testing.T) {
	q := NewQueue(nil, nil, nil)

	const producers = 8
	const perProducer = 50

	type item struct{ producer, seq int }

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue("lead", item{producer: p, seq: i})
			}
		}(p)
	}

	seen := make(map[uuid.UUID]bool)
	lastSeq := make(map[int]int)
	for p := 0; p < producers; p++ {
		lastSeq[p] = -1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for n := 0; n < producers*perProducer; n++ {
		task, _, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue %d error: %v", n, err)
		}
		if seen[task.ID] {
			t.Fatalf("task %s delivered twice", task.ID)
		}
		seen[task.ID] = true

		it := task.Payload.(item)
		if it.seq <= lastSeq[it.producer] {
			t.Fatalf("producer %d out of order: %d after %d", it.producer, it.seq, lastSeq[it.producer])
		}
		lastSeq[it.producer] = it.seq
	}
	wg.Wait()

	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestQueue_CancelUnknown(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	if q.Cancel(uuid.New()) {
		t.Fatalf("expected Cancel on unknown id to return false")
	}
}

func TestQueue_StatusUnknownIsFailed(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	if got := q.Status(uuid.New()); got != StatusFailed {
		t.Fatalf("expected failed for unknown id, got %s", got)
	}
	if _, ok := q.Lookup(uuid.New()); ok {
		t.Fatalf("expected Lookup to miss for unknown id")
	}
}

func TestQueue_CancelQueuedTask(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	id := q.Enqueue("lead", nil)

	if !q.Cancel(id) {
		t.Fatalf("expected Cancel to succeed for queued task")
	}
	if got := q.Status(id); got != StatusCanceled {
		t.Fatalf("expected canceled, got %s", got)
	}
	if q.Cancel(id) {
		t.Fatalf("expected second Cancel to report not found")
	}

	// The item is not dropped from the FIFO; it is handed out with an
	// already-canceled context and its status stays terminal.
	task, taskCtx, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue error: %v", err)
	}
	if task.ID != id {
		t.Fatalf("expected %s, got %s", id, task.ID)
	}
	if !errors.Is(taskCtx.Err(), context.Canceled) {
		t.Fatalf("expected canceled task context, got %v", taskCtx.Err())
	}
	if got := q.Status(id); got != StatusCanceled {
		t.Fatalf("expected status to remain canceled, got %s", got)
	}
}

func TestQueue_CancelProcessingTask(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	id := q.Enqueue("lead", nil)

	_, taskCtx, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue error: %v", err)
	}
	if !q.Cancel(id) {
		t.Fatalf("expected Cancel to succeed for processing task")
	}
	select {
	case <-taskCtx.Done():
	case <-time.After(time.Second):
		t.Fatalf("task context was not canceled")
	}
	if got := q.Status(id); got != StatusCanceled {
		t.Fatalf("expected canceled, got %s", got)
	}
}

func TestQueue_CancelAfterFinishIsNoop(t *testing.T) {
	q := NewQueue(nil, nil, nil)
	id := q.Enqueue("lead", nil)
	if _, _, err := q.Dequeue(context.Background()); err != nil {
		t.Fatalf("Dequeue error: %v", err)
	}
	q.finish(id, StatusCompleted)

	if q.Cancel(id) {
		t.Fatalf("expected Cancel after completion to report not found")
	}
	if got := q.Status(id); got != StatusCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestQueue_SweepEvictsOnlyExpiredTerminal(t *testing.T) {
	ledger := NewLedger()
	registry := NewRegistry()
	q := NewQueue(ledger, registry, nil)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return base }

	old := q.Enqueue("lead", nil)
	oldQueued := q.Enqueue("lead", nil)
	q.Dequeue(context.Background())
	q.finish(old, StatusCompleted)

	ledger.now = func() time.Time { return base.Add(50 * time.Minute) }
	young := q.Enqueue("lead", nil)
	q.Cancel(young)

	removed := q.Sweep(base.Add(90*time.Minute), time.Hour)
	if removed != 1 {
		t.Fatalf("expected 1 evicted entry, got %d", removed)
	}
	if _, ok := q.Lookup(old); ok {
		t.Fatalf("expected expired terminal task to be evicted")
	}
	if registry.Has(old) {
		t.Fatalf("expected handle of evicted task to be gone")
	}
	if _, ok := q.Lookup(young); !ok {
		t.Fatalf("expected task within retention window to persist")
	}
	if e, ok := q.Lookup(oldQueued); !ok || e.Status != StatusQueued {
		t.Fatalf("expected non-terminal task to persist regardless of age, got %+v ok=%v", e, ok)
	}
	if got := q.Status(old); got != StatusFailed {
		t.Fatalf("expected evicted id to read as failed, got %s", got)
	}
}
