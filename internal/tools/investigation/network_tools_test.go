package investigation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovokpus/investigatorai/internal/cache"
)

func TestFraudResearchToolDegradesWithoutBaseURL(t *testing.T) {
	tool := NewFraudResearchTool(FraudResearchConfig{}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(fraudResearchParams{Query: "romance scam typology"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError when no provider configured, got %+v", res)
	}
}

func TestFraudResearchToolRejectsMissingQuery(t *testing.T) {
	tool := NewFraudResearchTool(FraudResearchConfig{BaseURL: "https://example.invalid/search"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(fraudResearchParams{MaxResults: 3})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError for missing query, got %+v", res)
	}
}

func TestWebIntelligenceToolDegradesWithoutAPIKey(t *testing.T) {
	tool := NewWebIntelligenceTool(WebIntelligenceConfig{BaseURL: "https://example.invalid/search"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(webIntelParams{Query: "acme corp sanctions"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError when no API key configured, got %+v", res)
	}
}

func TestWebIntelligenceToolRejectsMissingQuery(t *testing.T) {
	tool := NewWebIntelligenceTool(WebIntelligenceConfig{BaseURL: "https://example.invalid/search", APIKey: "k"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(webIntelParams{})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError for missing query, got %+v", res)
	}
}

func TestExchangeRateToolShortCircuitsSameCurrency(t *testing.T) {
	tool := NewExchangeRateTool(ExchangeRateConfig{BaseURL: "https://example.invalid/rates"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(exchangeRateParams{Base: "usd", Quote: "USD"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	var resp exchangeRateResponse
	if err := json.Unmarshal([]byte(res.Content), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Rate != 1.0 {
		t.Fatalf("Rate = %v, want 1.0 for same-currency conversion", resp.Rate)
	}
}

func TestExchangeRateToolDegradesWithoutBaseURL(t *testing.T) {
	tool := NewExchangeRateTool(ExchangeRateConfig{}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(exchangeRateParams{Base: "USD", Quote: "EUR"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError when no provider configured, got %+v", res)
	}
}

// TestExchangeRateToolSendsAPIKeyAsBearerToken covers the ExchangeRateConfig
// APIKey field: it must reach the upstream request as credentials, not sit
// unread alongside BaseURL and Timeout.
func TestExchangeRateToolSendsAPIKeyAsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rate": 1.23, "as_of": "2026-01-01"}`))
	}))
	defer srv.Close()

	tool := NewExchangeRateTool(ExchangeRateConfig{BaseURL: srv.URL, APIKey: "secret-key"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(exchangeRateParams{Base: "USD", Quote: "EUR"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("Authorization header = %q, want %q", gotAuth, "Bearer secret-key")
	}
}

func TestExchangeRateToolRejectsMissingCurrencies(t *testing.T) {
	tool := NewExchangeRateTool(ExchangeRateConfig{BaseURL: "https://example.invalid/rates"}, cache.NewStore(cache.StoreOptions{}))
	params, _ := json.Marshal(exchangeRateParams{Base: "USD"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError for missing quote currency, got %+v", res)
	}
}
