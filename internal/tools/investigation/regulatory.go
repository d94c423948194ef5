package investigation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/rag"
)

// RegulatoryTool answers search_regulatory_documents by delegating to the
// hybrid Vector Store. It is the only one of the six tools that never
// makes a network call itself; caching and retry are the store's concern
// (the store's BM25 half cannot fail, and dense failures already degrade
// gracefully per rag.Store.Search), but a result-level cache is still
// applied here so repeated identical queries within an investigation (or
// across investigations) skip re-scoring entirely.
type RegulatoryTool struct {
	store *rag.Store
	cache *cache.Store
}

// NewRegulatoryTool constructs the search_regulatory_documents tool.
func NewRegulatoryTool(store *rag.Store, c *cache.Store) *RegulatoryTool {
	return &RegulatoryTool{store: store, cache: c}
}

func (t *RegulatoryTool) Name() string { return "search_regulatory_documents" }

func (t *RegulatoryTool) Description() string {
	return "Search indexed regulatory guidance (BSA/AML, FinCEN advisories, SAR/CTR filing rules) for passages relevant to a query."
}

func (t *RegulatoryTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Natural-language search query."},
			"k": {"type": "integer", "description": "Maximum number of passages to return.", "minimum": 1, "maximum": 20}
		},
		"required": ["query"]
	}`)
}

type regulatoryParams struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type regulatoryHit struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Method  string  `json:"method"`
	Text    string  `json:"text"`
	Source  string  `json:"source"`
}

func (t *RegulatoryTool) Execute(ctx context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p regulatoryParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if p.Query == "" {
		return &agentrt.ToolResult{Content: "invalid parameters: query is required", IsError: true}, nil
	}
	k := p.K
	if k <= 0 {
		k = 5
	}

	key := cache.CanonicalKey(string(cache.CategoryVectorSearch), map[string]string{"query": p.Query, "k": fmt.Sprint(k)})
	if raw, ok := t.cache.Get(ctx, key); ok {
		return &agentrt.ToolResult{Content: string(raw), CacheHit: true}, nil
	}

	hits, err := t.store.Search(ctx, p.Query, k, rag.MethodAuto)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}

	out := make([]regulatoryHit, 0, len(hits))
	for _, h := range hits {
		out = append(out, regulatoryHit{
			ChunkID: h.ChunkID,
			Score:   h.Score,
			Method:  string(h.Method),
			Text:    h.Chunk.Text,
			Source:  h.Chunk.Source,
		})
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	t.cache.Put(ctx, key, raw, cache.TTLFor(cache.CategoryVectorSearch))
	return &agentrt.ToolResult{Content: string(raw)}, nil
}
