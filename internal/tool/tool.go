package tool

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// FunctionType is the descriptor type of every tool advertised to the peer.
const FunctionType = "function"

// Tool is a locally invocable capability.
//
// Invoke may block on I/O; it receives a context that is cancelled when the
// session stops. A returned error is converted to a Failure result by the
// caller, so implementations only return Failure explicitly for expected,
// domain-level failures.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema of the argument object, or nil when
	// the tool takes no arguments.
	Parameters() *jsonschema.Schema
	Invoke(ctx context.Context, args map[string]any) (Result, error)
}

// Handler is the function signature for FuncTool invocations.
type Handler func(ctx context.Context, args map[string]any) (Result, error)

// Compile-time verification that FuncTool implements Tool.
var _ Tool = (*FuncTool)(nil)

// FuncTool is a Tool backed by a plain function.
type FuncTool struct {
	ToolName        string
	ToolDescription string
	ToolSchema      *jsonschema.Schema
	ToolHandler     Handler
}

// New creates a FuncTool.
func New(name, description string, schema *jsonschema.Schema, handler Handler) *FuncTool {
	return &FuncTool{
		ToolName:        name,
		ToolDescription: description,
		ToolSchema:      schema,
		ToolHandler:     handler,
	}
}

// Name returns the tool name.
func (t *FuncTool) Name() string {
	return t.ToolName
}

// Description returns the tool description.
func (t *FuncTool) Description() string {
	return t.ToolDescription
}

// Parameters returns the parameter schema, or nil.
func (t *FuncTool) Parameters() *jsonschema.Schema {
	return t.ToolSchema
}

// Invoke calls the handler.
func (t *FuncTool) Invoke(ctx context.Context, args map[string]any) (Result, error) {
	return t.ToolHandler(ctx, args)
}

// Descriptor is the wire form of a tool inside a session.update event.
//
// Wire format:
//
//	{
//	  "type": "function",
//	  "name": "changeTextColor",
//	  "description": "Change the text color of the webpage",
//	  "parameters": {"type": "object", "properties": {...}}
//	}
type Descriptor struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Describe builds the descriptor for a tool.
func Describe(t Tool) Descriptor {
	return Descriptor{
		Type:        FunctionType,
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}
