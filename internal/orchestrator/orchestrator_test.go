package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/llm"
)

type constantProvider struct {
	text  string
	err   error
	calls int
}

func (p *constantProvider) Name() string { return "constant" }
func (p *constantProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Text: p.text}, nil
}

func newTestOrchestrator(provider llm.Provider) *Orchestrator {
	registry := agentrt.NewRegistry()
	runtime := agentrt.NewRuntime(registry, provider)
	agents := agentrt.StandardAgentConfigs()
	for name, cfg := range agents {
		cfg.MaxIterations = 1
		agents[name] = cfg
	}
	store := cache.NewStore(cache.StoreOptions{})
	return New(runtime, agents, store, nil, Config{
		AnalysisDeadline:      5 * time.Second,
		ReportDeadline:        5 * time.Second,
		InvestigationDeadline: 10 * time.Second,
	})
}

func testInput() domain.TransactionInput {
	return domain.TransactionInput{
		TransactionID:      "txn-1",
		Amount:             15000,
		Currency:           "USD",
		OriginCountry:      "US",
		DestinationCountry: "AE",
		CustomerID:         "cust-1",
	}
}

func TestInvestigateCompletesSuccessfully(t *testing.T) {
	provider := &constantProvider{text: "no red flags found"}
	orch := newTestOrchestrator(provider)

	inv, err := orch.Investigate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != domain.StatusCompleted {
		t.Fatalf("expected completed status, got %s", inv.Status)
	}
	if len(inv.AnalysisResults) != 3 {
		t.Fatalf("expected 3 analysis results, got %d", len(inv.AnalysisResults))
	}
	if inv.FinalReport == "" {
		t.Fatal("expected a non-empty final report")
	}
}

func TestInvestigateFailsWhenAllAgentsErrorSameKind(t *testing.T) {
	provider := &constantProvider{err: llm.Permanent(errAuth)}
	orch := newTestOrchestrator(provider)

	inv, err := orch.Investigate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", inv.Status)
	}
	if inv.FinalReport != "" {
		t.Fatal("expected report phase to be skipped")
	}
}

func TestInvestigateShortCircuitsFromCache(t *testing.T) {
	provider := &constantProvider{text: "first run"}
	orch := newTestOrchestrator(provider)

	first, err := orch.Investigate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error on first run: %v", err)
	}
	callsAfterFirst := provider.calls

	second, err := orch.Investigate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if !second.FromCache {
		t.Fatal("expected second investigation to be served from cache")
	}
	if provider.calls != callsAfterFirst {
		t.Fatalf("expected no additional provider calls on cache hit, had %d now %d", callsAfterFirst, provider.calls)
	}
	if second.ID != first.ID {
		t.Fatalf("expected cached investigation id to match original, got %s vs %s", second.ID, first.ID)
	}
}

var errAuth = &authError{}

type authError struct{}

func (e *authError) Error() string { return "authentication failed" }
