// Package orchestrator drives one investigation end to end: dispatching
// the three analysis agents concurrently, synthesizing their findings
// through the Report agent, and publishing progress throughout.
//
// Grounded on the teacher's internal/agent/loop.go state-machine shape
// (phase transitions, deadline-bound sub-calls) generalized from one
// agent's ReAct loop to a fixed three-then-one agent pipeline, since the
// teacher has no multi-agent orchestrator of its own to port directly.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/llm"
	"github.com/ovokpus/investigatorai/internal/observability"
	"github.com/ovokpus/investigatorai/internal/progress"
)

// Config holds the Orchestrator's deadlines, defaulted per SPEC_FULL.md §5.6.
type Config struct {
	// AnalysisDeadline (D1) bounds the concurrent analysis phase. Default 120s.
	AnalysisDeadline time.Duration
	// ReportDeadline (D2) bounds the report-synthesis phase. Default 90s.
	ReportDeadline time.Duration
	// InvestigationDeadline bounds the whole run. Default 180s.
	InvestigationDeadline time.Duration
}

func (c Config) sanitized() Config {
	if c.AnalysisDeadline <= 0 {
		c.AnalysisDeadline = 120 * time.Second
	}
	if c.ReportDeadline <= 0 {
		c.ReportDeadline = 90 * time.Second
	}
	if c.InvestigationDeadline <= 0 {
		c.InvestigationDeadline = 180 * time.Second
	}
	return c
}

// analysisAgents is the fixed set of agents run concurrently in the
// CollectingAnalysis phase; reportAgent runs alone afterward.
var analysisAgents = []domain.AgentName{
	domain.AgentRegulatoryResearch,
	domain.AgentEvidenceCollection,
	domain.AgentComplianceCheck,
}

const reportAgent = domain.AgentReportGeneration

// Orchestrator runs investigations against a fixed agent roster.
type Orchestrator struct {
	runtime *agentrt.Runtime
	agents  map[domain.AgentName]agentrt.AgentConfig
	cache   *cache.Store
	sink    progress.Sink
	cfg     Config
	metrics *observability.InvestigationMetrics
	tracer  *observability.Tracer
}

// WithObservability attaches metrics/tracing, both optional.
func (o *Orchestrator) WithObservability(metrics *observability.InvestigationMetrics, tracer *observability.Tracer) *Orchestrator {
	o.metrics = metrics
	o.tracer = tracer
	return o
}

// New constructs an Orchestrator. agents is typically
// agentrt.StandardAgentConfigs(); sink may be nil (events are discarded).
func New(runtime *agentrt.Runtime, agents map[domain.AgentName]agentrt.AgentConfig, cacheStore *cache.Store, sink progress.Sink, cfg Config) *Orchestrator {
	if sink == nil {
		sink = progress.NoopSink{}
	}
	return &Orchestrator{
		runtime: runtime,
		agents:  agents,
		cache:   cacheStore,
		sink:    sink,
		cfg:     cfg.sanitized(),
	}
}

// Investigate runs the full Pending -> Running -> CollectingAnalysis ->
// Reporting -> Completed|Failed state machine for one transaction and
// returns the finished Investigation. It never returns a non-nil error for
// business failures (those are reflected in Investigation.Status/Error);
// a non-nil error indicates the orchestrator itself could not run (e.g. a
// nil dependency), which should not happen in a correctly wired system.
func (o *Orchestrator) Investigate(ctx context.Context, input domain.TransactionInput) (*domain.Investigation, error) {
	return o.InvestigateWithID(ctx, uuid.NewString(), input)
}

// NewInvestigationID generates an investigation ID using the same scheme
// Investigate uses internally. Callers that need to subscribe to the
// Progress Bus before the run starts (e.g. the streaming HTTP endpoint)
// should generate the ID this way and pass it to InvestigateWithID.
func (o *Orchestrator) NewInvestigationID() string {
	return uuid.NewString()
}

// InvestigateWithID is Investigate with a caller-supplied investigation
// ID, so a subscriber can attach to the Progress Bus stream before the
// run publishes its first event.
func (o *Orchestrator) InvestigateWithID(ctx context.Context, id string, input domain.TransactionInput) (*domain.Investigation, error) {
	now := time.Now()
	inv := &domain.Investigation{
		ID:                 id,
		Input:              input,
		CanonicalInputHash: canonicalInputHash(input),
		Status:             domain.StatusPending,
		AnalysisResults:    make(map[domain.AgentName]*domain.AgentResult),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if cached, ok := cache.GetJSON[domain.Investigation](ctx, o.cache, o.resultCacheKey(inv.CanonicalInputHash)); ok {
		cached.FromCache = true
		o.sink.Publish(id, domain.ProgressEvent{
			Kind:     domain.EventFinal,
			Progress: 100,
			Payload:  cached,
			Time:     time.Now(),
		})
		return &cached, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.InvestigationDeadline)
	defer cancel()

	if o.tracer != nil {
		var span trace.Span
		runCtx, span = o.tracer.TraceInvestigation(runCtx, inv.ID)
		defer span.End()
	}
	started := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.ObserveInvestigation(string(inv.Status), time.Since(started))
		}
	}()

	inv.Status = domain.StatusRunning
	o.sink.Publish(inv.ID, domain.ProgressEvent{Kind: domain.EventProgress, Message: "initializing", Progress: 0, Time: time.Now()})

	inv.Status = domain.StatusCollectingAnalysis
	o.runAnalysisPhase(runCtx, inv)

	if allFailedSameKind(inv.AnalysisResults) {
		inv.Status = domain.StatusFailed
		inv.ErrorKind = inv.AnalysisResults[analysisAgents[0]].ErrorKind
		inv.Error = "all analysis agents failed: " + string(inv.ErrorKind)
		inv.UpdatedAt = time.Now()
		o.sink.Publish(inv.ID, domain.ProgressEvent{Kind: domain.EventError, Message: inv.Error, Progress: 100, Time: time.Now()})
		return inv, nil
	}

	inv.Status = domain.StatusReporting
	o.runReportPhase(runCtx, inv)

	inv.Status = domain.StatusCompleted
	inv.UpdatedAt = time.Now()
	o.sink.Publish(inv.ID, domain.ProgressEvent{
		Kind:     domain.EventFinal,
		Progress: 100,
		Payload:  inv,
		Time:     time.Now(),
	})

	cache.PutJSON(ctx, o.cache, o.resultCacheKey(inv.CanonicalInputHash), *inv, cache.TTLFor(cache.CategoryInvestigationResult))
	return inv, nil
}

// runAnalysisPhase dispatches the three analysis agents concurrently and
// waits for all of them (success or failure) within AnalysisDeadline,
// emitting a progress tick (20% setup + 20% per completed agent) as each
// finishes.
func (o *Orchestrator) runAnalysisPhase(ctx context.Context, inv *domain.Investigation) {
	phaseCtx, cancel := context.WithTimeout(ctx, o.cfg.AnalysisDeadline)
	defer cancel()

	seed := []llm.Message{{
		Role:    "user",
		Content: fmt.Sprintf("Investigate this transaction:\n%s", marshalTransaction(inv.Input)),
	}}

	var mu sync.Mutex
	var wg sync.WaitGroup
	completed := 0

	for _, name := range analysisAgents {
		wg.Add(1)
		go func(name domain.AgentName) {
			defer wg.Done()
			cfg := o.agents[name]
			result, _ := o.runtime.Run(phaseCtx, inv.ID, cfg, seed, o.sink)

			mu.Lock()
			inv.AnalysisResults[name] = result
			completed++
			progressPct := 20 + completed*20
			mu.Unlock()

			o.sink.Publish(inv.ID, domain.ProgressEvent{
				Kind:     domain.EventProgress,
				Agent:    name,
				Message:  "agent completed",
				Progress: progressPct,
				Time:     time.Now(),
			})
		}(name)
	}
	wg.Wait()
}

// runReportPhase builds the Report agent's seed from the three analysis
// results (each as a User message with a section header, noting failures)
// and dispatches it within ReportDeadline.
func (o *Orchestrator) runReportPhase(ctx context.Context, inv *domain.Investigation) {
	phaseCtx, cancel := context.WithTimeout(ctx, o.cfg.ReportDeadline)
	defer cancel()

	seed := []llm.Message{{
		Role:    "user",
		Content: fmt.Sprintf("Produce the final report for this transaction:\n%s", marshalTransaction(inv.Input)),
	}}
	for _, name := range analysisAgents {
		result := inv.AnalysisResults[name]
		seed = append(seed, llm.Message{Role: "user", Content: sectionFor(name, result)})
	}

	cfg := o.agents[reportAgent]
	result, _ := o.runtime.Run(phaseCtx, inv.ID, cfg, seed, o.sink)
	inv.ReportResult = result
	inv.FinalReport = result.Text
	o.sink.Publish(inv.ID, domain.ProgressEvent{Kind: domain.EventProgress, Message: "report generated", Progress: 80, Time: time.Now()})
}

func sectionFor(name domain.AgentName, result *domain.AgentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", name)
	if result == nil {
		b.WriteString("agent did not run\n")
		return b.String()
	}
	if result.Error != "" {
		fmt.Fprintf(&b, "agent %s failed: %s\n", name, result.Error)
	}
	if result.Text != "" {
		b.WriteString(result.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func allFailedSameKind(results map[domain.AgentName]*domain.AgentResult) bool {
	if len(results) != len(analysisAgents) {
		return false
	}
	var kind domain.ErrorKind
	for i, name := range analysisAgents {
		r := results[name]
		if r == nil || r.Error == "" {
			return false
		}
		if i == 0 {
			kind = r.ErrorKind
		} else if r.ErrorKind != kind {
			return false
		}
	}
	return kind != domain.ErrorKindNone
}

func (o *Orchestrator) resultCacheKey(canonicalHash string) string {
	return cache.CanonicalKey(string(cache.CategoryInvestigationResult), map[string]string{"input_hash": canonicalHash})
}

// canonicalInputHash hashes the fields of a TransactionInput that define
// its identity for caching purposes (free-text Narrative and Metadata are
// excluded: two otherwise-identical transactions with a reworded narrative
// should still hit the same cached investigation).
func canonicalInputHash(input domain.TransactionInput) string {
	return cache.CanonicalKey("investigation_input", map[string]string{
		"transaction_id":       input.TransactionID,
		"amount":               strconv.FormatFloat(input.Amount, 'f', -1, 64),
		"currency":             input.Currency,
		"origin_country":       input.OriginCountry,
		"destination_country":  input.DestinationCountry,
		"customer_id":          input.CustomerID,
		"customer_risk_rating": input.CustomerRiskRating,
		"account_type":         input.AccountType,
	})
}

func marshalTransaction(input domain.TransactionInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "transaction_id: %s\n", input.TransactionID)
	fmt.Fprintf(&b, "amount: %s %s\n", strconv.FormatFloat(input.Amount, 'f', 2, 64), input.Currency)
	fmt.Fprintf(&b, "origin_country: %s\n", input.OriginCountry)
	fmt.Fprintf(&b, "destination_country: %s\n", input.DestinationCountry)
	fmt.Fprintf(&b, "customer_id: %s\n", input.CustomerID)
	if input.CustomerRiskRating != "" {
		fmt.Fprintf(&b, "customer_risk_rating: %s\n", input.CustomerRiskRating)
	}
	if input.AccountType != "" {
		fmt.Fprintf(&b, "account_type: %s\n", input.AccountType)
	}
	if input.Narrative != "" {
		fmt.Fprintf(&b, "narrative: %s\n", input.Narrative)
	}
	return b.String()
}
