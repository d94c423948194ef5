package investigation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
)

// ExchangeRateConfig configures get_exchange_rate_data's backing provider.
type ExchangeRateConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ExchangeRateTool answers get_exchange_rate_data, an HTTP GET against a
// currency conversion API.
type ExchangeRateTool struct {
	cfg  ExchangeRateConfig
	http *httpClient
}

// NewExchangeRateTool constructs the tool.
func NewExchangeRateTool(cfg ExchangeRateConfig, c *cache.Store) *ExchangeRateTool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ExchangeRateTool{cfg: cfg, http: newHTTPClient(c, cache.CategoryExchangeRate, cfg.Timeout)}
}

func (t *ExchangeRateTool) Name() string { return "get_exchange_rate_data" }

func (t *ExchangeRateTool) Description() string {
	return "Look up the exchange rate between two ISO-4217 currency codes."
}

func (t *ExchangeRateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"base": {"type": "string", "description": "ISO-4217 base currency code, e.g. USD."},
			"quote": {"type": "string", "description": "ISO-4217 quote currency code, e.g. EUR."}
		},
		"required": ["base", "quote"]
	}`)
}

type exchangeRateParams struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type exchangeRateResponse struct {
	Rate float64 `json:"rate"`
	AsOf string  `json:"as_of"`
}

func (t *ExchangeRateTool) Execute(ctx context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p exchangeRateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	p.Base, p.Quote = strings.ToUpper(p.Base), strings.ToUpper(p.Quote)
	if p.Base == "" || p.Quote == "" {
		return &agentrt.ToolResult{Content: "invalid parameters: base and quote are required", IsError: true}, nil
	}
	if t.cfg.BaseURL == "" {
		return &agentrt.ToolResult{Content: "unavailable: no exchange rate provider configured", IsError: true}, nil
	}
	if p.Base == p.Quote {
		raw, _ := json.Marshal(exchangeRateResponse{Rate: 1.0})
		return &agentrt.ToolResult{Content: string(raw)}, nil
	}

	reqURL := fmt.Sprintf("%s?base=%s&quote=%s", t.cfg.BaseURL, p.Base, p.Quote)
	var headers map[string]string
	if t.cfg.APIKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + t.cfg.APIKey}
	}
	var resp exchangeRateResponse
	cacheHit, err := t.http.getJSONWithHeaders(ctx, reqURL, headers, map[string]string{"base": p.Base, "quote": p.Quote}, &resp)
	if err != nil {
		return &agentrt.ToolResult{Content: err.Error(), IsError: true}, nil
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	return &agentrt.ToolResult{Content: string(raw), CacheHit: cacheHit}, nil
}
