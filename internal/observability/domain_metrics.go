package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InvestigationMetrics is the investigation-domain counterpart to Metrics:
// the counters and histograms SPEC_FULL.md §5.8 names, kept in their own
// constructor so a process can opt into domain metrics without the
// channel/webhook metrics Metrics also registers.
type InvestigationMetrics struct {
	// InvestigationsTotal counts investigations by terminal status
	// (completed|failed). Labels: status.
	InvestigationsTotal *prometheus.CounterVec

	// InvestigationDuration histograms total investigation wall time.
	InvestigationDuration *prometheus.HistogramVec

	// AgentDuration histograms one agent run's wall time. Labels: agent.
	AgentDuration *prometheus.HistogramVec

	// ToolDuration histograms one tool call's wall time. Labels: tool.
	ToolDuration *prometheus.HistogramVec

	// CacheHits and CacheMisses together derive the cache hit ratio.
	// Labels: category.
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// NewInvestigationMetrics registers and returns the investigation-domain metrics.
func NewInvestigationMetrics() *InvestigationMetrics {
	return &InvestigationMetrics{
		InvestigationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investigatorai_investigations_total",
				Help: "Total investigations by terminal status",
			},
			[]string{"status"},
		),
		InvestigationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investigatorai_investigation_duration_seconds",
				Help:    "Total wall time of an investigation",
				Buckets: []float64{1, 5, 15, 30, 60, 90, 120, 180},
			},
			[]string{"status"},
		),
		AgentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investigatorai_agent_duration_seconds",
				Help:    "Duration of one agent's ReAct loop",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 75},
			},
			[]string{"agent"},
		),
		ToolDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "investigatorai_tool_duration_seconds",
				Help:    "Duration of one tool call",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15},
			},
			[]string{"tool"},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investigatorai_cache_hits_total",
				Help: "Cache Store hits by category",
			},
			[]string{"category"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "investigatorai_cache_misses_total",
				Help: "Cache Store misses by category",
			},
			[]string{"category"},
		),
	}
}

// ObserveInvestigation records one terminal investigation outcome.
func (m *InvestigationMetrics) ObserveInvestigation(status string, duration time.Duration) {
	m.InvestigationsTotal.WithLabelValues(status).Inc()
	m.InvestigationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveAgent records one agent run's duration.
func (m *InvestigationMetrics) ObserveAgent(agent string, duration time.Duration) {
	m.AgentDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// ObserveTool records one tool call's duration.
func (m *InvestigationMetrics) ObserveTool(tool string, duration time.Duration) {
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ObserveCache records a cache lookup outcome for category.
func (m *InvestigationMetrics) ObserveCache(category string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(category).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(category).Inc()
}
