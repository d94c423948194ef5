// Package agentrt implements the bounded ReAct agent loop used by every
// specialized investigation agent, and the tool registry it dispatches
// through.
package agentrt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/infra"
)

// DefaultMaxInFlightToolCalls bounds total concurrent tool executions
// across every agent in the process (network-backed tools dominate this
// budget; in-memory tools like risk scoring finish well inside it).
const DefaultMaxInFlightToolCalls = 64

// Tool is the contract every investigation tool implements. Shape is
// grounded verbatim on the teacher's agent.Tool interface
// (internal/agent/runtime.go), since this is the exact protocol the LLM
// Gateway's tool-call loop expects.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is a tool's response, narrowed from the teacher's
// agent.ToolResult to the fields this system uses (no artifact/attachment
// support — none of the six investigation tools produce media).
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
	// CacheHit and Attempts are set by network-backed tools (see
	// internal/tools/investigation) so the Agent Runtime can record them
	// on the resulting domain.ToolInvocation without re-deriving them.
	CacheHit bool `json:"cache_hit,omitempty"`
	Attempts int  `json:"attempts,omitempty"`
}

const (
	// MaxToolNameLength and MaxToolParamsSize mirror the teacher's
	// ToolRegistry guards (internal/agent/tool_registry.go).
	MaxToolNameLength = 256
	MaxToolParamsSize = 10 << 20
)

// Registry is a thread-safe tool lookup table, grounded directly on the
// teacher's internal/agent/tool_registry.go ToolRegistry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	sem   *infra.Semaphore
}

// NewRegistry constructs an empty Registry, bounding concurrent tool
// execution at DefaultMaxInFlightToolCalls.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool), sem: infra.NewSemaphore(DefaultMaxInFlightToolCalls)}
}

// WithConcurrencyLimit overrides the default in-flight tool call cap.
func (r *Registry) WithConcurrencyLimit(maxInFlight int) *Registry {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlightToolCalls
	}
	r.sem = infra.NewSemaphore(int64(maxInFlight))
	return r
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns every registered tool's name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	return names
}

// Execute validates name/params size before dispatching to the tool,
// mirroring the teacher's ToolRegistry.Execute guard ordering.
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) (*ToolResult, error) {
	if len(name) == 0 || len(name) > MaxToolNameLength {
		return nil, fmt.Errorf("agentrt: invalid tool name length for %q", name)
	}
	if len(params) > MaxToolParamsSize {
		return nil, fmt.Errorf("agentrt: tool params for %q exceed max size", name)
	}
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("agentrt: unknown tool %q", name)
	}
	if err := validateArgs(t.Schema(), params); err != nil {
		return &ToolResult{IsError: true, Content: err.Error()}, nil
	}
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer r.sem.Release(1)
	}
	return t.Execute(ctx, params)
}

// Subset returns a Registry restricted to the named tools, used to give
// each agent kind its own allowed-tool subset (SPEC_FULL.md §5.5 table)
// without letting one agent discover another's tools.
func (r *Registry) Subset(names ...string) *Registry {
	sub := &Registry{tools: make(map[string]Tool), sem: r.sem}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range names {
		if t, ok := r.tools[n]; ok {
			sub.tools[n] = t
		}
	}
	return sub
}

// Schemas returns the JSON-schema tool definitions for every registered
// tool, in the {name, description, parameters} shape LLM providers expect.
func (r *Registry) Schemas() []domain.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, domain.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  json.RawMessage(t.Schema()),
		})
	}
	return out
}
