package core

import (
	"context"
	"encoding/json"
)

// ToolDefinition describes a callable operation to the agent loop.
// InputSchema is a JSON Schema object (see tools.ObjectSchema helpers).
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// ToolResult is the outcome of a single tool execution. Output carries the
// human-readable text handed back to the model.
type ToolResult struct {
	Success bool
	Output  string
	Error   string
}

// Tool is an operation the agent loop can invoke.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error)
}

// ToolInvocation records one tool call made during an agent run.
// The loop adapter is responsible for producing these, so downstream code
// never inspects provider-specific response objects.
type ToolInvocation struct {
	Name      string
	Arguments json.RawMessage
	Succeeded bool
}
