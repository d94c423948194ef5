package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder implements rag.QueryEmbedder against OpenAI's embeddings
// API, grounded on the teacher's internal/memory/embeddings/openai
// provider, narrowed to the single-text Embed call the Vector Store's
// dense fallback needs (no batch path: queries are embedded one at a
// time, at search time).
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder for model (e.g.
// "text-embedding-3-large").
func NewOpenAIEmbedder(apiKey, baseURL, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: embedder API key is required")
	}
	if model == "" {
		model = "text-embedding-3-large"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Embed returns text's embedding vector.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("llm: embed query: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("llm: embedder returned no vectors")
	}
	return resp.Data[0].Embedding, nil
}
