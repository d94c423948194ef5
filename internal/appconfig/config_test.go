package appconfig

import (
	"os"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.LLM.Provider)
	}
	if cfg.Concurrency.MaxInFlightLLMCalls != 32 {
		t.Errorf("MaxInFlightLLMCalls = %d, want 32", cfg.Concurrency.MaxInFlightLLMCalls)
	}
	if cfg.Timeouts.AnalysisPhase != 120*time.Second {
		t.Errorf("AnalysisPhase = %v, want 120s", cfg.Timeouts.AnalysisPhase)
	}
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("INVESTIGATORAI_LLM_MODEL", "claude-haiku-test")
	t.Setenv("INVESTIGATORAI_LLM_MAX_TOKENS", "2048")
	t.Setenv("INVESTIGATORAI_BM25_ENABLED", "false")
	t.Setenv("INVESTIGATORAI_TIMEOUT_ANALYSIS_PHASE", "45s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "claude-haiku-test" {
		t.Errorf("Model = %q, want claude-haiku-test", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("MaxTokens = %d, want 2048", cfg.LLM.MaxTokens)
	}
	if cfg.Retrieval.BM25Enabled {
		t.Error("BM25Enabled = true, want false")
	}
	if cfg.Timeouts.AnalysisPhase != 45*time.Second {
		t.Errorf("AnalysisPhase = %v, want 45s", cfg.Timeouts.AnalysisPhase)
	}
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	contents := []byte("llm:\n  model: claude-opus-test\n  max_tokens: 8192\nretrieval:\n  method: bm25\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "claude-opus-test" {
		t.Errorf("Model = %q, want claude-opus-test", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 8192 {
		t.Errorf("MaxTokens = %d, want 8192", cfg.LLM.MaxTokens)
	}
	if cfg.Retrieval.Method != "bm25" {
		t.Errorf("Method = %q, want bm25", cfg.Retrieval.Method)
	}
}
