package progress

import (
	"github.com/ovokpus/investigatorai/internal/domain"
)

// Sink is the narrow publishing interface the Agent Runtime and
// Orchestrator depend on, so neither needs to know about Bus's
// subscription/replay machinery.
type Sink interface {
	Publish(investigationID string, event domain.ProgressEvent)
}

var _ Sink = (*Bus)(nil)

// NoopSink discards every event. Useful for agent-runtime unit tests that
// don't exercise progress reporting.
type NoopSink struct{}

// Publish implements Sink.
func (NoopSink) Publish(string, domain.ProgressEvent) {}
