package llm

import "testing"

func TestNewOpenAIEmbedderRequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "", ""); err == nil {
		t.Fatal("expected error when API key is empty")
	}
}

func TestNewOpenAIEmbedderDefaultsModel(t *testing.T) {
	e, err := NewOpenAIEmbedder("test-key", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.model != "text-embedding-3-large" {
		t.Errorf("model = %q, want default text-embedding-3-large", e.model)
	}
}

func TestNewOpenAIEmbedderHonorsExplicitModel(t *testing.T) {
	e, err := NewOpenAIEmbedder("test-key", "", "text-embedding-3-small")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.model != "text-embedding-3-small" {
		t.Errorf("model = %q, want text-embedding-3-small", e.model)
	}
}
