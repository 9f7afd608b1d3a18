package agent

import (
	"context"

	"github.com/recall-ai/recall-go/core"
)

// Loop is the external model-and-tools loop. Implementations receive the
// full short-term history and may invoke the memory tools internally.
type Loop interface {
	Invoke(ctx context.Context, history []core.Message) (*LoopResult, error)
}

// LoopResult is the loop's reply in one of three shapes: a message
// transcript, a bare output string, or a raw value. Reply decodes the
// canonical text once so downstream code never branches on shape.
type LoopResult struct {
	Messages []core.Message
	Output   string
	Raw      string

	// Tools records every tool invocation the loop performed this turn.
	Tools []core.ToolInvocation
}

// Reply returns the agent's response text: the last message when a
// transcript is present, otherwise the output field, otherwise the raw
// value.
func (r *LoopResult) Reply() string {
	if n := len(r.Messages); n > 0 {
		return r.Messages[n-1].Content
	}
	if r.Output != "" {
		return r.Output
	}
	return r.Raw
}
