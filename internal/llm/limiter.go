package llm

import (
	"context"

	"github.com/ovokpus/investigatorai/internal/infra"
)

// DefaultMaxInFlightCalls bounds the LLM Gateway's total concurrent
// provider calls across every agent and investigation in the process.
const DefaultMaxInFlightCalls = 32

// LimitedProvider wraps a Provider with a process-wide concurrency cap,
// reusing the teacher's internal/infra.Semaphore (originally built for
// nexus's outbound webhook/tool fan-out) rather than hand-rolling a new
// one: Acquire blocks until a slot frees or ctx is cancelled, so a caller
// waiting on a full gateway still respects its own deadline.
type LimitedProvider struct {
	inner Provider
	sem   *infra.Semaphore
}

// NewLimitedProvider wraps inner so at most maxInFlight calls to Complete
// run concurrently. maxInFlight <= 0 falls back to DefaultMaxInFlightCalls.
func NewLimitedProvider(inner Provider, maxInFlight int) *LimitedProvider {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlightCalls
	}
	return &LimitedProvider{inner: inner, sem: infra.NewSemaphore(int64(maxInFlight))}
}

// Complete blocks for a free slot, then delegates to the wrapped Provider.
func (l *LimitedProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.inner.Complete(ctx, req)
}

// Name delegates to the wrapped Provider.
func (l *LimitedProvider) Name() string { return l.inner.Name() }

// Stats exposes the underlying semaphore's instrumentation, e.g. for a
// /health or /cache/stats endpoint.
func (l *LimitedProvider) Stats() infra.SemaphoreStats { return l.sem.Stats() }

var _ Provider = (*LimitedProvider)(nil)
