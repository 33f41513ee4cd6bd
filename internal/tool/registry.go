package tool

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/agent-bridge-go/internal/errors"
)

// Registry holds the tools exposed to the remote peer in registration order.
//
// Tools are registered during initialization. Once sealed, the registry
// rejects further registrations and is safe for concurrent lookups.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	sealed  bool
}

// entry pairs a tool with its resolved parameter schema.
type entry struct {
	tool     Tool
	resolved *jsonschema.Resolved
}

// NewRegistry creates a registry holding the given tools.
//
// It panics if two tools share a name or a schema cannot be resolved, since
// that is a programming error in static tool tables. Use Register to handle
// those cases as errors.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		entries: make(map[string]*entry, len(tools)),
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds a tool.
//
// Returns ErrDuplicateTool if the name is taken and ErrRegistrySealed after Seal.
func (r *Registry) Register(t Tool) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("register tool: name is required")
	}

	var resolved *jsonschema.Resolved

	if schema := t.Parameters(); schema != nil {
		rs, err := schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("register tool %q: resolve schema: %w", t.Name(), err)
		}

		resolved = rs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("register tool %q: %w", t.Name(), errors.ErrRegistrySealed)
	}

	if _, exists := r.entries[t.Name()]; exists {
		return fmt.Errorf("register tool %q: %w", t.Name(), errors.ErrDuplicateTool)
	}

	r.entries[t.Name()] = &entry{tool: t, resolved: resolved}
	r.order = append(r.order, t.Name())

	return nil
}

// Seal freezes the registry. It is safe to call more than once.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true
}

// Lookup returns the tool registered under name.
//
// Returns an UnknownToolError (matching ErrToolNotFound) if absent.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, &errors.UnknownToolError{Name: name}
	}

	return e.tool, nil
}

// Validate checks args against the parameter schema of the named tool.
// Tools without a schema accept any arguments.
func (r *Registry) Validate(name string, args map[string]any) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return &errors.UnknownToolError{Name: name}
	}

	if e.resolved == nil {
		return nil
	}

	if err := e.resolved.Validate(args); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", name, err)
	}

	return nil
}

// DescribeAll returns the descriptors of all tools in registration order.
func (r *Registry) DescribeAll() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, Describe(r.entries[name].tool))
	}

	return result
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
