package investigation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
)

// FraudResearchConfig configures search_fraud_research's backing academic
// search API.
type FraudResearchConfig struct {
	BaseURL string        // e.g. an arXiv-compatible search endpoint
	Timeout time.Duration
}

// FraudResearchTool answers search_fraud_research, an HTTP GET against an
// academic literature search API. Grounded on the teacher's
// internal/tools/websearch/search.go structural template.
type FraudResearchTool struct {
	cfg  FraudResearchConfig
	http *httpClient
}

// NewFraudResearchTool constructs the tool; a blank BaseURL makes the
// tool always degrade to "unavailable", matching the boundary behavior
// when no provider is configured.
func NewFraudResearchTool(cfg FraudResearchConfig, c *cache.Store) *FraudResearchTool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &FraudResearchTool{cfg: cfg, http: newHTTPClient(c, cache.CategoryAcademicResearch, cfg.Timeout)}
}

func (t *FraudResearchTool) Name() string { return "search_fraud_research" }

func (t *FraudResearchTool) Description() string {
	return "Search academic and industry research literature for fraud typologies, schemes, and red flags relevant to a query."
}

func (t *FraudResearchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Research topic or fraud typology to search for."},
			"max_results": {"type": "integer", "minimum": 1, "maximum": 20}
		},
		"required": ["query"]
	}`)
}

type fraudResearchParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type fraudResearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		URL     string `json:"url"`
	} `json:"results"`
}

func (t *FraudResearchTool) Execute(ctx context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p fraudResearchParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if p.Query == "" {
		return &agentrt.ToolResult{Content: "invalid parameters: query is required", IsError: true}, nil
	}
	if t.cfg.BaseURL == "" {
		return &agentrt.ToolResult{Content: "unavailable: no academic research provider configured", IsError: true}, nil
	}
	max := p.MaxResults
	if max <= 0 {
		max = 5
	}

	reqURL := fmt.Sprintf("%s?q=%s&max=%d", t.cfg.BaseURL, url.QueryEscape(p.Query), max)
	var resp fraudResearchResponse
	cacheHit, err := t.http.getJSON(ctx, reqURL, map[string]string{"query": p.Query, "max": fmt.Sprint(max)}, &resp)
	if err != nil {
		return &agentrt.ToolResult{Content: err.Error(), IsError: true}, nil
	}

	raw, err := json.Marshal(resp.Results)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	return &agentrt.ToolResult{Content: string(raw), CacheHit: cacheHit}, nil
}
