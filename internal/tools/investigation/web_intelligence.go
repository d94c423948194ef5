package investigation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
)

// WebIntelligenceConfig configures search_web_intelligence's backing
// provider.
type WebIntelligenceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// WebIntelligenceTool answers search_web_intelligence, an HTTP POST to a
// web-search provider. Grounded on internal/tools/websearch/search.go.
type WebIntelligenceTool struct {
	cfg  WebIntelligenceConfig
	http *httpClient
}

// NewWebIntelligenceTool constructs the tool.
func NewWebIntelligenceTool(cfg WebIntelligenceConfig, c *cache.Store) *WebIntelligenceTool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &WebIntelligenceTool{cfg: cfg, http: newHTTPClient(c, cache.CategoryWebIntelligence, cfg.Timeout)}
}

func (t *WebIntelligenceTool) Name() string { return "search_web_intelligence" }

func (t *WebIntelligenceTool) Description() string {
	return "Search the open web for news, sanctions hits, adverse media, and other open-source intelligence about an entity or topic."
}

func (t *WebIntelligenceTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Entity name or topic to search for."},
			"result_count": {"type": "integer", "minimum": 1, "maximum": 20}
		},
		"required": ["query"]
	}`)
}

type webIntelParams struct {
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
}

type webIntelRequestBody struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type webIntelResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

func (t *WebIntelligenceTool) Execute(ctx context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p webIntelParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if p.Query == "" {
		return &agentrt.ToolResult{Content: "invalid parameters: query is required", IsError: true}, nil
	}
	if t.cfg.BaseURL == "" || t.cfg.APIKey == "" {
		return &agentrt.ToolResult{Content: "unavailable: no web intelligence provider configured", IsError: true}, nil
	}
	count := p.ResultCount
	if count <= 0 {
		count = 5
	}

	var resp webIntelResponse
	cacheHit, err := t.http.postJSON(ctx, t.cfg.BaseURL, webIntelRequestBody{Query: p.Query, Count: count},
		map[string]string{"query": p.Query, "count": fmt.Sprint(count)}, &resp)
	if err != nil {
		return &agentrt.ToolResult{Content: err.Error(), IsError: true}, nil
	}

	raw, err := json.Marshal(resp.Results)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	return &agentrt.ToolResult{Content: string(raw), CacheHit: cacheHit}, nil
}
