package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests, the task queue and
// the enrichment client. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	tasksTotal            = make(map[taskKey]int64)
	retentionTasksEvicted int64

	enrichAttemptsTotal = make(map[string]int64)
	enrichResultsTotal  = make(map[string]int64)

	leadsScoredTotal = make(map[string]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type taskKey struct {
	Kind   string
	Status string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordTask counts a task reaching a terminal status.
func RecordTask(kind, status string) {
	mu.Lock()
	defer mu.Unlock()
	tasksTotal[taskKey{Kind: kind, Status: status}]++
}

// RecordRetentionTasks increments the counter of ledger entries evicted
// by the retention sweep.
func RecordRetentionTasks(evicted int64) {
	if evicted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionTasksEvicted += evicted
}

// RecordEnrichAttempt counts a single enrichment HTTP attempt by outcome
// (success, timeout, transport, server_error, client_error, decode_error).
func RecordEnrichAttempt(outcome string) {
	mu.Lock()
	defer mu.Unlock()
	enrichAttemptsTotal[outcome]++
}

// RecordEnrichResult counts the final result of an Enrich call.
func RecordEnrichResult(success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	enrichResultsTotal[s]++
}

// RecordLeadScored counts processed leads by priority tier.
func RecordLeadScored(priority string) {
	mu.Lock()
	defer mu.Unlock()
	leadsScoredTotal[priority]++
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export returns Prometheus-style metrics text. queueDepth is sampled by
// the caller since the queue lives outside this package.
func Export(queueDepth int) string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP leadrouter_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE leadrouter_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "leadrouter_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP leadrouter_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE leadrouter_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP leadrouter_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE leadrouter_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		fmt.Fprintf(&b, "leadrouter_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "leadrouter_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	// Task queue metrics
	b.WriteString("# HELP leadrouter_queue_depth Tasks waiting to be processed\n")
	b.WriteString("# TYPE leadrouter_queue_depth gauge\n")
	fmt.Fprintf(&b, "leadrouter_queue_depth %d\n", queueDepth)

	b.WriteString("# HELP leadrouter_tasks_total Tasks that reached a terminal status\n")
	b.WriteString("# TYPE leadrouter_tasks_total counter\n")

	var taskKeys []taskKey
	for k := range tasksTotal {
		taskKeys = append(taskKeys, k)
	}
	sort.Slice(taskKeys, func(i, j int) bool {
		if taskKeys[i].Kind != taskKeys[j].Kind {
			return taskKeys[i].Kind < taskKeys[j].Kind
		}
		return taskKeys[i].Status < taskKeys[j].Status
	})
	for _, k := range taskKeys {
		fmt.Fprintf(&b, "leadrouter_tasks_total{kind=\"%s\",status=\"%s\"} %d\n",
			k.Kind, k.Status, tasksTotal[k])
	}

	b.WriteString("# HELP leadrouter_retention_tasks_evicted_total Ledger entries evicted by retention\n")
	b.WriteString("# TYPE leadrouter_retention_tasks_evicted_total counter\n")
	fmt.Fprintf(&b, "leadrouter_retention_tasks_evicted_total %d\n", retentionTasksEvicted)

	// Enrichment metrics
	b.WriteString("# HELP leadrouter_enrich_attempts_total Enrichment HTTP attempts by outcome\n")
	b.WriteString("# TYPE leadrouter_enrich_attempts_total counter\n")
	for _, o := range sortedKeys(enrichAttemptsTotal) {
		fmt.Fprintf(&b, "leadrouter_enrich_attempts_total{outcome=\"%s\"} %d\n", o, enrichAttemptsTotal[o])
	}

	b.WriteString("# HELP leadrouter_enrich_results_total Enrich calls by final result\n")
	b.WriteString("# TYPE leadrouter_enrich_results_total counter\n")
	for _, s := range sortedKeys(enrichResultsTotal) {
		fmt.Fprintf(&b, "leadrouter_enrich_results_total{success=\"%s\"} %d\n", s, enrichResultsTotal[s])
	}

	b.WriteString("# HELP leadrouter_leads_scored_total Processed leads by priority\n")
	b.WriteString("# TYPE leadrouter_leads_scored_total counter\n")
	for _, p := range sortedKeys(leadsScoredTotal) {
		fmt.Fprintf(&b, "leadrouter_leads_scored_total{priority=\"%s\"} %d\n", p, leadsScoredTotal[p])
	}

	return b.String()
}
