package agentrt

import (
	"context"
	"encoding/json"
	"testing"
)

type schemaTool struct {
	calls int
}

func (t *schemaTool) Name() string        { return "check_compliance_requirements" }
func (t *schemaTool) Description() string { return "test tool with a required field" }
func (t *schemaTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {"jurisdiction": {"type": "string"}},
		"required": ["jurisdiction"]
	}`)
}
func (t *schemaTool) Execute(context.Context, json.RawMessage) (*ToolResult, error) {
	t.calls++
	return &ToolResult{Content: "ok"}, nil
}

func TestRegistryExecuteRejectsParamsMissingRequiredField(t *testing.T) {
	reg := NewRegistry()
	tool := &schemaTool{}
	reg.Register(tool)

	res, err := reg.Execute(context.Background(), tool.Name(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError result for params missing the required field")
	}
	if tool.calls != 0 {
		t.Fatalf("tool.Execute should not run when schema validation fails, got %d calls", tool.calls)
	}
}

func TestRegistryExecutePassesValidParams(t *testing.T) {
	reg := NewRegistry()
	tool := &schemaTool{}
	reg.Register(tool)

	res, err := reg.Execute(context.Background(), tool.Name(), json.RawMessage(`{"jurisdiction":"US"}`))
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	if tool.calls != 1 {
		t.Fatalf("expected 1 call, got %d", tool.calls)
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Execute(context.Background(), "nonexistent", json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestSubsetSharesConcurrencyLimiter(t *testing.T) {
	reg := NewRegistry().WithConcurrencyLimit(5)
	tool := &schemaTool{}
	reg.Register(tool)

	sub := reg.Subset(tool.Name())
	if sub.sem != reg.sem {
		t.Fatal("Subset should share the parent registry's semaphore")
	}
}
