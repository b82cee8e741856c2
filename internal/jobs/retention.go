package jobs

import (
	"time"

	"leadrouter/internal/metrics"
)

// DefaultRetention is how long terminal tasks stay queryable.
const DefaultRetention = time.Hour

// Sweep evicts terminal tasks whose last transition is older than
// retention from both the ledger and the registry, and returns how many
// were removed.
func (q *Queue) Sweep(now time.Time, retention time.Duration) int {
	if retention <= 0 {
		retention = DefaultRetention
	}
	evicted := q.ledger.EvictTerminalBefore(now.Add(-retention))
	for _, id := range evicted {
		q.registry.Remove(id)
	}
	if n := len(evicted); n > 0 {
		metrics.RecordRetentionTasks(int64(n))
		q.logInfo("tasks_evicted", "count", n)
	}
	return len(evicted)
}
