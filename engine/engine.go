// Package engine runs the Claude tool loop behind the agent.Loop interface:
// it sends the conversation to the model, executes requested tools from its
// registry, feeds results back, and repeats until the model answers in text.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/recall-ai/recall-go/agent"
	"github.com/recall-ai/recall-go/core"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultMaxTokens bounds each model response.
	DefaultMaxTokens = 4096

	// DefaultMaxTurns bounds the tool loop per invocation.
	DefaultMaxTurns = 10
)

// DefaultSystemPrompt instructs the model on when to use the memory tools.
const DefaultSystemPrompt = `You are a helpful assistant with persistent memory.

You have three memory tools:
- save_to_memory: save important information the user asks you to remember or that will matter later. Pick a fitting category (work, personal, project, ...).
- search_memory: search saved information before claiming you don't know something from earlier conversations.
- remember_context: save the state of the current working session.

Use the tools proactively but sparingly. Answer in the user's language.`

// Engine implements agent.Loop over the Anthropic Messages API.
type Engine struct {
	client       *anthropic.Client
	registry     *ToolRegistry
	model        string
	maxTokens    int64
	maxTurns     int
	systemPrompt string
	logger       *slog.Logger
}

// Config configures an Engine. Zero values use the package defaults.
type Config struct {
	Model        string
	MaxTokens    int64
	MaxTurns     int
	SystemPrompt string
	Logger       *slog.Logger
}

// New creates an Engine over the given client and tool registry.
func New(client *anthropic.Client, registry *ToolRegistry, cfg Config) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("anthropic client is required")
	}
	if registry == nil {
		registry = NewToolRegistry()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:       client,
		registry:     registry,
		model:        model,
		maxTokens:    maxTokens,
		maxTurns:     maxTurns,
		systemPrompt: systemPrompt,
		logger:       logger.With("component", "engine"),
	}, nil
}

// Registry returns the engine's tool registry.
func (e *Engine) Registry() *ToolRegistry {
	return e.registry
}

// Invoke runs the tool loop until the model responds without tool calls or
// the turn limit is reached. The returned result carries the transcript and
// every tool invocation performed.
func (e *Engine) Invoke(ctx context.Context, history []core.Message) (*agent.LoopResult, error) {
	logger := e.logger.With("session", uuid.New().String())
	messages := toAPIMessages(history)
	apiTools := e.registry.ToAPITools()

	var invocations []core.ToolInvocation

	for turn := 0; turn < e.maxTurns; turn++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("invoke cancelled: %w", ctx.Err())
		}

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(e.model),
			MaxTokens: e.maxTokens,
			Messages:  messages,
			System: []anthropic.TextBlockParam{
				{Text: e.systemPrompt},
			},
		}
		if len(apiTools) > 0 {
			params.Tools = apiTools
		}

		resp, err := e.client.Messages.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("claude api: %w", err)
		}

		var textResponse string
		var toolResults []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textResponse += block.Text

			case "tool_use":
				result, isError := e.executeTool(ctx, logger, block.Name, block.Input)
				invocations = append(invocations, core.ToolInvocation{
					Name:      block.Name,
					Arguments: block.Input,
					Succeeded: !isError,
				})
				toolResults = append(toolResults,
					anthropic.NewToolResultBlock(block.ID, result, isError))
			}
		}

		if len(toolResults) == 0 {
			return &agent.LoopResult{
				Messages: append(append([]core.Message(nil), history...),
					core.AgentMessage(textResponse)),
				Tools: invocations,
			}, nil
		}

		messages = append(messages, resp.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return nil, fmt.Errorf("exceeded maximum turns (%d)", e.maxTurns)
}

// executeTool runs one tool call and formats its observation for the model.
func (e *Engine) executeTool(ctx context.Context, logger *slog.Logger, name string, input []byte) (string, bool) {
	tool, ok := e.registry.Get(name)
	if !ok {
		logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("unknown tool: %s", name), true
	}

	result, err := tool.Execute(ctx, input)
	if err != nil {
		logger.Error("tool execution failed", "tool", name, "error", err)
		return err.Error(), true
	}
	if !result.Success {
		logger.Warn("tool reported failure", "tool", name, "error", result.Error)
		return result.Output, true
	}

	logger.Info("tool executed", "tool", name)
	return result.Output, false
}

// toAPIMessages converts the short-term history to API message params.
func toAPIMessages(history []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case core.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case core.RoleAgent:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}

var _ agent.Loop = (*Engine)(nil)
