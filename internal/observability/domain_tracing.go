package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceInvestigation opens the root span for one investigation run.
func (t *Tracer) TraceInvestigation(ctx context.Context, investigationID string) (context.Context, trace.Span) {
	return t.Start(ctx, "investigation", SpanOptions{
		Kind: trace.SpanKindServer,
		Attributes: []attribute.KeyValue{
			attribute.String("investigation_id", investigationID),
		},
	})
}

// TraceAgentRun spans one agent's ReAct loop, nested under TraceInvestigation.
func (t *Tracer) TraceAgentRun(ctx context.Context, investigationID, agent string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("agent.%s", agent), SpanOptions{
		Kind: trace.SpanKindInternal,
		Attributes: []attribute.KeyValue{
			attribute.String("investigation_id", investigationID),
			attribute.String("agent", agent),
		},
	})
}

// TraceToolCall spans one tool invocation within an agent's loop.
func (t *Tracer) TraceToolCall(ctx context.Context, investigationID, agent, tool string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("tool.%s", tool), SpanOptions{
		Kind: trace.SpanKindClient,
		Attributes: []attribute.KeyValue{
			attribute.String("investigation_id", investigationID),
			attribute.String("agent", agent),
			attribute.String("tool", tool),
		},
	})
}

// TraceLLMCall spans one LLM Gateway completion call.
func (t *Tracer) TraceLLMCall(ctx context.Context, investigationID, agent, provider string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("llm.%s", provider), SpanOptions{
		Kind: trace.SpanKindClient,
		Attributes: []attribute.KeyValue{
			attribute.String("investigation_id", investigationID),
			attribute.String("agent", agent),
			attribute.String("llm.provider", provider),
		},
	})
}

// TraceCacheOp spans one Cache Store get/put.
func (t *Tracer) TraceCacheOp(ctx context.Context, op, category string) (context.Context, trace.Span) {
	return t.Start(ctx, fmt.Sprintf("cache.%s", op), SpanOptions{
		Kind: trace.SpanKindInternal,
		Attributes: []attribute.KeyValue{
			attribute.String("cache.op", op),
			attribute.String("cache.category", category),
		},
	})
}

// SetErrorKind tags span with the investigation-domain error_kind attribute
// used throughout SPEC_FULL.md §4.8's span taxonomy.
func (t *Tracer) SetErrorKind(span trace.Span, kind string) {
	if kind == "" {
		return
	}
	t.SetAttributes(span, "error_kind", kind)
}
