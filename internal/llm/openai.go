package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ovokpus/investigatorai/internal/retry"
)

// OpenAIConfig configures the secondary, OpenAI-compatible provider used
// as a fallback in FallbackChain-style routing (the Report agent's
// summarizer config knob, per SPEC_FULL.md §2).
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int
	RetryConfig  retry.Config
}

// OpenAIProvider implements Provider against sashabaranov/go-openai.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	maxTokens    int
	retryConfig  retry.Config
}

// NewOpenAIProvider constructs the provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: openai API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openai.GPT4oMini
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.RetryConfig.MaxAttempts <= 0 {
		cfg.RetryConfig = retry.Config{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     800 * time.Millisecond,
			Factor:       4.0,
		}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		retryConfig:  cfg.RetryConfig,
	}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	chatReq, err := p.buildRequest(req)
	if err != nil {
		return nil, Permanent(err)
	}

	value, result := retry.DoWithValue(ctx, p.retryConfig, func() (openai.ChatCompletionResponse, error) {
		resp, callErr := p.client.CreateChatCompletion(ctx, chatReq)
		if callErr == nil {
			return resp, nil
		}
		if !isRetryableOpenAIError(callErr) {
			return openai.ChatCompletionResponse{}, retry.Permanent(callErr)
		}
		return openai.ChatCompletionResponse{}, callErr
	})
	if result.Err != nil {
		if errContextOverflow(result.Err) {
			return nil, fmt.Errorf("%w: %v", ErrContextOverflow, result.Err)
		}
		if retry.IsPermanent(result.Err) {
			return nil, Permanent(errors.Unwrap(result.Err))
		}
		return nil, result.Err
	}

	return toOpenAIResponse(value), nil
}

func (p *OpenAIProvider) buildRequest(req *Request) (openai.ChatCompletionRequest, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		for _, tr := range m.ToolResults {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    tr.Content,
				ToolCallID: tr.ToolCallID,
			})
		}
	}

	tools := make([]openai.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		var params map[string]interface{}
		if err := json.Unmarshal(t.Parameters, &params); err != nil {
			return openai.ChatCompletionRequest{}, fmt.Errorf("tool %s: invalid schema: %w", t.Name, err)
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Tools:       tools,
		Temperature: float32(req.Temperature),
	}, nil
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset")
}

func toOpenAIResponse(resp openai.ChatCompletionResponse) *Response {
	out := &Response{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) == 0 {
		return out
	}
	choice := resp.Choices[0]
	out.Text = choice.Message.Content
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out
}
