package investigation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/rag"
)

func newTestRegulatoryTool() *RegulatoryTool {
	chunks := []domain.DocumentChunk{
		{ChunkID: "c1", Source: "FinCEN-314", Text: "Suspicious Activity Report filing thresholds for wire transfers."},
		{ChunkID: "c2", Source: "BSA-103", Text: "General onboarding guidance for new retail customers."},
	}
	store := rag.NewStore(chunks, nil)
	return NewRegulatoryTool(store, cache.NewStore(cache.StoreOptions{}))
}

func TestRegulatoryToolRejectsMissingQuery(t *testing.T) {
	tool := newTestRegulatoryTool()
	params, _ := json.Marshal(regulatoryParams{K: 3})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError for missing query, got %+v", res)
	}
}

func TestRegulatoryToolReturnsRankedHits(t *testing.T) {
	tool := newTestRegulatoryTool()
	params, _ := json.Marshal(regulatoryParams{Query: "wire transfer SAR filing", K: 1})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	var hits []regulatoryHit
	if err := json.Unmarshal([]byte(res.Content), &hits); err != nil {
		t.Fatalf("decode hits: %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "c1" {
		t.Fatalf("expected c1 to rank first, got %+v", hits)
	}
}

func TestRegulatoryToolServesFromCacheOnSecondCall(t *testing.T) {
	tool := newTestRegulatoryTool()
	params, _ := json.Marshal(regulatoryParams{Query: "SAR filing", K: 1})

	first, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("expected first call to miss cache")
	}

	second, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("expected second call to hit cache")
	}
	if second.Content != first.Content {
		t.Fatalf("cached content mismatch: %q vs %q", second.Content, first.Content)
	}
}
