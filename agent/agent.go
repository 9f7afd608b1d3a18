// Package agent implements the conversation orchestrator: it owns the
// short-term buffer, hands history to the external model loop, and records
// prompt, agent and system metrics for every turn.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recall-ai/recall-go/memory"
	"github.com/recall-ai/recall-go/metrics"
)

// Agent is the conversation orchestrator. Single-threaded: each turn runs to
// completion before the next begins.
type Agent struct {
	shortTerm *memory.ShortTermMemory
	store     *memory.Store
	metrics   *metrics.Aggregator
	loop      Loop
	cost      CostEstimator
	logger    *slog.Logger
}

// Config configures an Agent.
type Config struct {
	// ShortTermCapacity bounds the conversation buffer. Non-positive uses
	// memory.DefaultShortTermCapacity.
	ShortTermCapacity int

	// Cost estimates per-turn cost from latency. Defaults to LatencyCost.
	Cost CostEstimator

	Logger *slog.Logger
}

// New creates an Agent over the given loop, store and metrics aggregator.
func New(loop Loop, store *memory.Store, agg *metrics.Aggregator, cfg Config) (*Agent, error) {
	if loop == nil {
		return nil, fmt.Errorf("agent loop is required")
	}
	if store == nil {
		return nil, fmt.Errorf("memory store is required")
	}
	if agg == nil {
		return nil, fmt.Errorf("metrics aggregator is required")
	}
	cost := cfg.Cost
	if cost == nil {
		cost = LatencyCost{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		shortTerm: memory.NewShortTerm(cfg.ShortTermCapacity),
		store:     store,
		metrics:   agg,
		loop:      loop,
		cost:      cost,
		logger:    logger.With("component", "agent"),
	}, nil
}

// Chat runs one conversation turn: appends the user message, invokes the
// loop with the full short-term history, appends the reply, and records
// metrics. A loop failure is logged, reflected into agent and system failure
// events, and then returned to the caller; the session stays intact for the
// next turn.
func (a *Agent) Chat(ctx context.Context, message string) (string, error) {
	start := time.Now()

	a.shortTerm.AddUserMessage(message)
	history := a.shortTerm.Messages()

	result, err := a.loop.Invoke(ctx, history)
	if err != nil {
		latency := time.Since(start).Seconds()
		a.logger.Error("agent loop failed", "error", err)
		a.metrics.LogAgent(metrics.AgentEvent{
			TaskCompleted: false,
			Steps:         1,
			ErrorType:     "agent_loop_error",
			Cost:          a.cost.EstimateCost(latency),
		})
		a.metrics.LogSystem(metrics.SystemEvent{
			TaskSuccess:  false,
			Latency:      latency,
			Error:        true,
			ErrorMessage: err.Error(),
		})
		return "", fmt.Errorf("agent loop: %w", err)
	}

	reply := result.Reply()
	a.shortTerm.AddAgentMessage(reply)

	latency := time.Since(start).Seconds()
	cost := a.cost.EstimateCost(latency)
	report := AssessQuality(reply)

	toolCalls := map[string]int{}
	toolSuccesses := map[string]int{}
	for _, inv := range result.Tools {
		toolCalls[inv.Name]++
		if inv.Succeeded {
			toolSuccesses[inv.Name]++
		}
	}

	a.metrics.LogPrompt(metrics.PromptEvent{
		QualityScore:    report.Score,
		FormatCompliant: report.FormatCompliant,
		Refused:         report.Refused,
		ResponseLength:  len(reply),
	})
	a.metrics.LogAgent(metrics.AgentEvent{
		TaskCompleted: true,
		Steps:         len(result.Tools) + 1,
		ToolCalls:     toolCalls,
		ToolSuccesses: toolSuccesses,
		Cost:          cost,
	})
	a.metrics.LogSystem(metrics.SystemEvent{
		TaskSuccess: true,
		Latency:     latency,
		Cost:        cost,
	})

	a.logger.Info("turn complete",
		"latency_seconds", latency,
		"tools", len(result.Tools),
		"quality", report.Score)
	return reply, nil
}

// History renders the short-term conversation summary.
func (a *Agent) History() string {
	return a.shortTerm.Summary()
}

// ClearShortTerm empties the conversation buffer and starts a new session.
func (a *Agent) ClearShortTerm() {
	a.shortTerm.Clear()
	a.logger.Info("short-term memory cleared")
}

// SaveContext persists a session context description to long-term memory.
func (a *Agent) SaveContext(ctx context.Context, context string) memory.SaveResult {
	return a.store.Save(ctx, context, map[string]string{
		"category": "context",
		"type":     "session_context",
	})
}

// Metrics exposes the aggregator for reporting surfaces.
func (a *Agent) Metrics() *metrics.Aggregator {
	return a.metrics
}
