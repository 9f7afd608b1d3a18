package engine

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/recall-ai/recall-go/core"
)

// ToolRegistry holds the tools exposed to the model, in registration order.
type ToolRegistry struct {
	tools map[string]core.Tool
	order []string
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: map[string]core.Tool{}}
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *ToolRegistry) Register(tool core.Tool) {
	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// RegisterAll registers every tool in the slice.
func (r *ToolRegistry) RegisterAll(tools []core.Tool) {
	for _, t := range tools {
		r.Register(t)
	}
}

// Get returns the named tool.
func (r *ToolRegistry) Get(name string) (core.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tool names in registration order.
func (r *ToolRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// ToAPITools converts the registered tools to Anthropic API tool params.
func (r *ToolRegistry) ToAPITools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.order))
	for _, name := range r.order {
		def := r.tools[name].Definition()

		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := def.InputSchema["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := def.InputSchema["required"].([]string); ok {
			schema.Required = req
		}

		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: schema,
			},
		})
	}
	return out
}
