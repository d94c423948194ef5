package agentrt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/llm"
	"github.com/ovokpus/investigatorai/internal/observability"
	"github.com/ovokpus/investigatorai/internal/progress"
)

// DefaultMaxIterations bounds the ReAct loop's tool-call rounds before a
// forced conclusion, per SPEC_FULL.md §5.5 (narrower than the teacher's
// default of 10).
const DefaultMaxIterations = 6

// AgentConfig describes one of the four fixed investigation agents: its
// system prompt, the subset of the Tool Registry it may call, and an
// optional hint steering its first tool call.
type AgentConfig struct {
	Name          domain.AgentName
	SystemPrompt  string
	AllowedTools  []string
	FirstToolHint string
	MaxIterations int
	Model         string
	MaxTokens     int
}

func (c AgentConfig) maxIterations() int {
	if c.MaxIterations > 0 {
		return c.MaxIterations
	}
	return DefaultMaxIterations
}

// Runtime runs a single agent's bounded ReAct loop: call the LLM, execute
// any requested tools, feed results back, repeat until the model stops
// requesting tools or the iteration cap forces a conclusion.
//
// Grounded on the teacher's internal/agent/loop.go AgenticLoop.Run state
// machine (Stream -> ExecuteTools -> Continue), simplified: no branch-aware
// session storage, no async-job tools, no approval-policy gate, and a
// single in-process tool executor rather than the teacher's bounded
// parallel Executor — SPEC_FULL.md's tool calls per iteration are few
// enough that sequential execution is sufficient.
type Runtime struct {
	registry *Registry
	provider llm.Provider
	metrics  *observability.InvestigationMetrics
	tracer   *observability.Tracer
}

// NewRuntime constructs a Runtime.
func NewRuntime(registry *Registry, provider llm.Provider) *Runtime {
	return &Runtime{registry: registry, provider: provider}
}

// WithObservability attaches metrics/tracing, both optional; either may be
// nil to leave that signal unwired.
func (r *Runtime) WithObservability(metrics *observability.InvestigationMetrics, tracer *observability.Tracer) *Runtime {
	r.metrics = metrics
	r.tracer = tracer
	return r
}

// Run executes cfg's agent against seed (the conversation so far: usually a
// single user message describing the transaction under investigation),
// reporting progress through sink, and returns once the agent concludes,
// is forced to conclude at the iteration cap, or ctx is cancelled.
func (r *Runtime) Run(ctx context.Context, investigationID string, cfg AgentConfig, seed []llm.Message, sink progress.Sink) (*domain.AgentResult, error) {
	if sink == nil {
		sink = progress.NoopSink{}
	}

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.TraceAgentRun(ctx, investigationID, string(cfg.Name))
		defer span.End()
	}

	result := &domain.AgentResult{
		Agent:     cfg.Name,
		StartedAt: time.Now(),
	}
	sink.Publish(investigationID, domain.ProgressEvent{
		Kind:  domain.EventAgentStarted,
		Agent: cfg.Name,
		Time:  time.Now(),
	})
	defer func() {
		if r.metrics != nil {
			r.metrics.ObserveAgent(string(cfg.Name), result.FinishedAt.Sub(result.StartedAt))
		}
	}()

	subset := r.registry.Subset(cfg.AllowedTools...)
	schemas := subset.Schemas()

	messages := append([]llm.Message(nil), seed...)
	if cfg.FirstToolHint != "" {
		messages = append(messages, llm.Message{
			Role:    "user",
			Content: fmt.Sprintf("Start by calling the %s tool before drawing any conclusions.", cfg.FirstToolHint),
		})
	}

	maxIter := cfg.maxIterations()
	var finalText string
	concluded := false

	for iteration := 0; iteration < maxIter; iteration++ {
		result.Iterations = iteration + 1

		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			result.ErrorKind = domain.ErrorKindCancellation
			result.Error = err.Error()
			result.FinishedAt = time.Now()
			return result, nil
		}

		req := &llm.Request{
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			System:    cfg.SystemPrompt,
			Messages:  messages,
			Tools:     schemas,
		}
		resp, err := r.provider.Complete(ctx, req)
		if err != nil {
			return r.failed(result, err)
		}

		if len(resp.ToolCalls) == 0 {
			finalText = resp.Text
			concluded = true
			break
		}

		assistantMsg := llm.Message{Role: "assistant", Content: resp.Text, ToolCalls: resp.ToolCalls}
		messages = append(messages, assistantMsg)

		toolResults := make([]llm.ToolResultMessage, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			invocation, trm := r.invoke(ctx, investigationID, cfg.Name, subset, call)
			result.ToolCalls = append(result.ToolCalls, invocation)
			toolResults = append(toolResults, trm)

			sink.Publish(investigationID, domain.ProgressEvent{
				Kind:    domain.EventToolCall,
				Agent:   cfg.Name,
				Message: call.Name,
				Time:    time.Now(),
			})
			sink.Publish(investigationID, domain.ProgressEvent{
				Kind:    domain.EventToolResult,
				Agent:   cfg.Name,
				Message: call.Name,
				Payload: invocation.IsError,
				Time:    time.Now(),
			})
		}

		messages = append(messages, llm.Message{Role: "user", ToolResults: toolResults})
	}

	if !concluded {
		text, err := r.forceConclusion(ctx, cfg, messages)
		if err != nil {
			return r.failed(result, err)
		}
		finalText = text
	}

	result.Text = finalText
	result.FinishedAt = time.Now()
	sink.Publish(investigationID, domain.ProgressEvent{
		Kind:  domain.EventAgentCompleted,
		Agent: cfg.Name,
		Time:  time.Now(),
	})
	return result, nil
}

// forceConclusion makes one final, tool-free call asking the model to
// summarize its findings so far, matching spec.md's iteration-cap behavior
// of always returning a conclusion rather than an error.
func (r *Runtime) forceConclusion(ctx context.Context, cfg AgentConfig, messages []llm.Message) (string, error) {
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: "You have reached your tool-call limit. Summarize your findings and conclusions now without calling any more tools.",
	})
	resp, err := r.provider.Complete(ctx, &llm.Request{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		System:    cfg.SystemPrompt,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (r *Runtime) invoke(ctx context.Context, investigationID string, agent domain.AgentName, subset *Registry, call llm.ToolCall) (domain.ToolInvocation, llm.ToolResultMessage) {
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.TraceToolCall(ctx, investigationID, string(agent), call.Name)
		defer span.End()
	}

	started := time.Now()
	res, err := subset.Execute(ctx, call.Name, call.Input)
	if err != nil {
		res = &ToolResult{IsError: true, Content: fmt.Sprintf("error: unknown tool %q", call.Name)}
	}
	if r.metrics != nil {
		r.metrics.ObserveTool(call.Name, time.Since(started))
	}

	invocation := domain.ToolInvocation{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Arguments:  string(call.Input),
		Result:     res.Content,
		IsError:    res.IsError,
		CacheHit:   res.CacheHit,
		Attempts:   res.Attempts,
		Duration:   time.Since(started),
	}
	trm := llm.ToolResultMessage{ToolCallID: call.ID, Content: res.Content, IsError: res.IsError}
	return invocation, trm
}

func (r *Runtime) failed(result *domain.AgentResult, err error) (*domain.AgentResult, error) {
	result.FinishedAt = time.Now()
	result.Error = err.Error()
	result.ErrorKind = classifyErrorKind(err)
	return result, nil
}

func classifyErrorKind(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindCancellation
	case llm.IsContextOverflow(err):
		return domain.ErrorKindContextOverflow
	case llm.IsPermanent(err):
		return domain.ErrorKindPermanentExternal
	default:
		return domain.ErrorKindTransientExternal
	}
}

// marshalArgs is a convenience used by agent configs constructing seed
// messages that embed a transaction as JSON.
func marshalArgs(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
