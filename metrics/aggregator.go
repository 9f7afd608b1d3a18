// Package metrics accumulates prompt, retrieval, agent and system metric
// streams. Each stream has a durable newline-delimited JSON log plus a
// running aggregate, so point-in-time summaries cost O(1) in the number of
// recorded events.
//
// The aggregate is designed for a single writer per process. Methods are
// mutex-guarded for safety, but multi-instance deployments must give each
// instance its own metrics directory; concurrent writers to the same files
// are not supported.
package metrics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stream log file names, one per stream.
const (
	promptLog    = "prompt_metrics.jsonl"
	retrievalLog = "retrieval_metrics.jsonl"
	agentLog     = "agent_metrics.jsonl"
	systemLog    = "system_metrics.jsonl"

	snapshotFile = "aggregated_metrics.json"
)

// Aggregator accumulates the four metric streams.
type Aggregator struct {
	mu        sync.Mutex
	dir       string
	logger    *slog.Logger
	startTime time.Time

	prompts   PromptStats
	retrieval RetrievalStats
	agents    AgentStats
	system    SystemStats
}

// New creates an Aggregator writing stream logs and snapshots under dir.
func New(dir string, logger *slog.Logger) (*Aggregator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create metrics dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	return &Aggregator{
		dir:       dir,
		logger:    logger.With("component", "metrics"),
		startTime: now,
		agents: AgentStats{
			ToolCalls:     map[string]int{},
			ToolSuccesses: map[string]int{},
			Errors:        map[string]int{},
		},
		system: SystemStats{StartTime: now.Format(time.RFC3339)},
	}, nil
}

// LogPrompt records one prompt event: updates the running aggregate and
// appends the raw event to the prompt stream log.
func (a *Aggregator) LogPrompt(ev PromptEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp(&ev.Timestamp)
	if ev.Metadata == nil {
		ev.Metadata = map[string]interface{}{}
	}

	a.prompts.TotalRequests++
	if ev.Refused {
		a.prompts.TotalRefusals++
	}
	if ev.FormatCompliant {
		a.prompts.FormatComplianceCount++
	}
	a.prompts.TotalResponseLength += ev.ResponseLength
	a.prompts.QualityScores = append(a.prompts.QualityScores, ev.QualityScore)

	a.appendEvent(promptLog, ev)
}

// LogRetrieval records one retrieval event.
func (a *Aggregator) LogRetrieval(ev RetrievalEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp(&ev.Timestamp)
	if ev.Metadata == nil {
		ev.Metadata = map[string]interface{}{}
	}
	if ev.ConfidenceScores == nil {
		ev.ConfidenceScores = []float64{}
	}

	a.retrieval.TotalRetrievals++
	a.retrieval.TotalChunksRetrieved += ev.ChunksRetrieved
	a.retrieval.TotalRetrievalLatency += ev.Latency
	a.retrieval.ConfidenceScores = append(a.retrieval.ConfidenceScores, ev.ConfidenceScores...)
	a.retrieval.SourceDiversity = append(a.retrieval.SourceDiversity, ev.SourceDiversity)

	a.appendEvent(retrievalLog, ev)
}

// LogAgent records one agent task event.
func (a *Aggregator) LogAgent(ev AgentEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp(&ev.Timestamp)
	if ev.Metadata == nil {
		ev.Metadata = map[string]interface{}{}
	}
	if ev.ToolCalls == nil {
		ev.ToolCalls = map[string]int{}
	}
	if ev.ToolSuccesses == nil {
		ev.ToolSuccesses = map[string]int{}
	}

	a.agents.TotalTasks++
	if ev.TaskCompleted {
		a.agents.CompletedTasks++
	}
	a.agents.TotalSteps += ev.Steps
	a.agents.TotalCost += ev.Cost
	for name, n := range ev.ToolCalls {
		a.agents.ToolCalls[name] += n
	}
	for name, n := range ev.ToolSuccesses {
		a.agents.ToolSuccesses[name] += n
	}
	if ev.ErrorType != "" {
		a.agents.Errors[ev.ErrorType]++
	}

	a.appendEvent(agentLog, ev)
}

// LogSystem records one end-to-end request event.
func (a *Aggregator) LogSystem(ev SystemEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stamp(&ev.Timestamp)
	if ev.Metadata == nil {
		ev.Metadata = map[string]interface{}{}
	}

	a.system.TotalRequests++
	if ev.TaskSuccess {
		a.system.SuccessfulRequests++
	}
	if ev.Error {
		a.system.Errors++
	}
	a.system.TotalLatency += ev.Latency
	a.system.TotalCost += ev.Cost

	a.appendEvent(systemLog, ev)
}

// Aggregated returns a point-in-time snapshot with all derived ratios
// computed from the running totals. Derived values are never stored; a zero
// denominator yields 0 rather than an error.
func (a *Aggregator) Aggregated() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Prompts:   a.prompts.clone(),
		Retrieval: a.retrieval.clone(),
		Agents:    a.agents.clone(),
		System:    a.system,
	}
	snap.System.UptimeSeconds = time.Since(a.startTime).Seconds()
	snap.derive()
	return snap
}

// SaveAggregated writes the full snapshot atomically to
// aggregated_metrics.json in the metrics directory.
func (a *Aggregator) SaveAggregated() error {
	snap := a.Aggregated()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(a.dir, snapshotFile)
	tmp, err := os.CreateTemp(a.dir, snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Dir returns the metrics directory.
func (a *Aggregator) Dir() string {
	return a.dir
}

// appendEvent appends one JSON record to the named stream log.
// Caller must hold the mutex. Write failures are logged, not propagated:
// metric persistence must never break the operation being measured.
func (a *Aggregator) appendEvent(name string, ev interface{}) {
	data, err := json.Marshal(ev)
	if err != nil {
		a.logger.Warn("marshal metric event failed", "stream", name, "error", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(a.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		a.logger.Warn("open metric log failed", "stream", name, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		a.logger.Warn("append metric event failed", "stream", name, "error", err)
	}
}

func stamp(ts *string) {
	if *ts == "" {
		*ts = time.Now().Format(time.RFC3339)
	}
}
