package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/retry"
)

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int
	// RetryConfig overrides the gateway's retry policy. Defaults to two
	// retries with 200ms/800ms backoff, per SPEC_FULL.md §5.4.
	RetryConfig retry.Config
}

// AnthropicProvider implements Provider against the official Anthropic
// SDK, grounded on the teacher's internal/agent/providers/anthropic.go
// (client construction, message/tool conversion, retryable-error
// classification) but narrowed to one non-streaming call per Complete,
// matching the LLM Gateway's single-assistant-message contract.
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
	maxTokens    int
	retryConfig  retry.Config
}

// NewAnthropicProvider constructs the provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: anthropic API key is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
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
			Jitter:       false,
		}
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicProvider{
		client:       anthropic.NewClient(opts...),
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		retryConfig:  cfg.RetryConfig,
	}, nil
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends req and blocks for the full response, retrying transient
// failures up to p.retryConfig.MaxAttempts times.
func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, Permanent(err)
	}

	value, result := retry.DoWithValue(ctx, p.retryConfig, func() (*anthropic.Message, error) {
		msg, callErr := p.client.Messages.New(ctx, params)
		if callErr == nil {
			return msg, nil
		}
		if !isRetryableError(callErr) {
			return nil, retry.Permanent(callErr)
		}
		return nil, callErr
	})
	if result.Err != nil {
		return nil, p.classify(result.Err)
	}

	return toResponse(value), nil
}

func (p *AnthropicProvider) buildParams(req *Request) (anthropic.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("llm: convert messages: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := convertTools(req.Tools)
		if err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("llm: convert tools: %w", err)
		}
		params.Tools = tools
	}
	return params, nil
}

func (p *AnthropicProvider) classify(err error) error {
	if errContextOverflow(err) {
		return fmt.Errorf("%w: %v", ErrContextOverflow, err)
	}
	if retry.IsPermanent(err) {
		return Permanent(errors.Unwrap(err))
	}
	return err
}

func errContextOverflow(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "maximum context length") ||
		strings.Contains(msg, "prompt is too long")
}

// isRetryableError mirrors the teacher's classification: rate limits and
// 5xx/server errors are retryable; everything else (auth, malformed
// request, context overflow) is permanent.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "rate_limit"), strings.Contains(msg, "429"), strings.Contains(msg, "too many requests"):
		return true
	case strings.Contains(msg, "500"), strings.Contains(msg, "502"), strings.Contains(msg, "503"), strings.Contains(msg, "504"),
		strings.Contains(msg, "internal server error"), strings.Contains(msg, "bad gateway"),
		strings.Contains(msg, "service unavailable"), strings.Contains(msg, "gateway timeout"):
		return true
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return true
	case strings.Contains(msg, "connection reset"), strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return true
	default:
		return false
	}
}

func convertMessages(msgs []Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == "system" {
			continue
		}

		var content []anthropic.ContentBlockParamUnion
		if m.Content != "" {
			content = append(content, anthropic.NewTextBlock(m.Content))
		}
		for _, tr := range m.ToolResults {
			content = append(content, anthropic.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
		}
		for _, tc := range m.ToolCalls {
			var input map[string]interface{}
			if err := json.Unmarshal(tc.Input, &input); err != nil {
				return nil, fmt.Errorf("invalid tool call input for %s: %w", tc.ID, err)
			}
			content = append(content, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
		}

		if m.Role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(content...))
		} else {
			out = append(out, anthropic.NewUserMessage(content...))
		}
	}
	return out, nil
}

func convertTools(schemas []domain.ToolSchema) ([]anthropic.ToolUnionParam, error) {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		var schema anthropic.ToolInputSchemaParam
		if err := json.Unmarshal(s.Parameters, &schema); err != nil {
			return nil, fmt.Errorf("tool %s: invalid schema: %w", s.Name, err)
		}
		toolParam := anthropic.ToolUnionParamOfTool(schema, s.Name)
		if toolParam.OfTool == nil {
			return nil, fmt.Errorf("tool %s: missing tool definition", s.Name)
		}
		toolParam.OfTool.Description = anthropic.String(s.Description)
		out = append(out, toolParam)
	}
	return out, nil
}

func toResponse(msg *anthropic.Message) *Response {
	resp := &Response{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Text += b.Text
		case anthropic.ToolUseBlock:
			input, _ := json.Marshal(b.Input)
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: b.ID, Name: b.Name, Input: input})
		}
	}
	return resp
}
