// Package domain holds the core data model shared across the
// investigation pipeline: transaction inputs, investigation records,
// per-agent results, tool invocations, and retrieval artifacts.
package domain

import (
	"encoding/json"
	"time"
)

// InvestigationStatus is the terminal or in-flight state of an Investigation.
type InvestigationStatus string

const (
	StatusPending            InvestigationStatus = "pending"
	StatusRunning             InvestigationStatus = "running"
	StatusCollectingAnalysis  InvestigationStatus = "collecting_analysis"
	StatusReporting           InvestigationStatus = "reporting"
	StatusCompleted           InvestigationStatus = "completed"
	StatusFailed              InvestigationStatus = "failed"
)

// AgentName identifies one of the four fixed analysis/report agents.
type AgentName string

const (
	AgentRegulatoryResearch AgentName = "regulatory_research"
	AgentEvidenceCollection AgentName = "evidence_collection"
	AgentComplianceCheck    AgentName = "compliance_check"
	AgentReportGeneration   AgentName = "report_generation"
)

// ErrorKind classifies why an Investigation or AgentResult failed, used
// both for Report agent summarization and for metrics/trace tagging.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = ""
	ErrorKindInput             ErrorKind = "input"
	ErrorKindTransientExternal ErrorKind = "transient_external"
	ErrorKindPermanentExternal ErrorKind = "permanent_external"
	ErrorKindCancellation      ErrorKind = "cancellation"
	ErrorKindContextOverflow   ErrorKind = "context_overflow"
	ErrorKindCacheFault        ErrorKind = "cache_fault"
	ErrorKindBusFault          ErrorKind = "bus_fault"
)

// TransactionInput is the caller-supplied subject of an investigation.
type TransactionInput struct {
	TransactionID       string            `json:"transaction_id"`
	Amount              float64           `json:"amount"`
	Currency            string            `json:"currency"`
	OriginCountry       string            `json:"origin_country"`
	DestinationCountry  string            `json:"destination_country"`
	CustomerID          string            `json:"customer_id"`
	CustomerRiskRating  string            `json:"customer_risk_rating,omitempty"`
	AccountType         string            `json:"account_type,omitempty"`
	Narrative           string            `json:"narrative,omitempty"`
	OccurredAt          time.Time         `json:"occurred_at"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// ToolInvocation records a single tool call made by an agent during a run.
type ToolInvocation struct {
	ToolCallID string        `json:"tool_call_id"`
	ToolName   string        `json:"tool_name"`
	Arguments  string        `json:"arguments"`
	Result     string        `json:"result"`
	IsError    bool          `json:"is_error"`
	CacheHit   bool          `json:"cache_hit"`
	Attempts   int           `json:"attempts"`
	Duration   time.Duration `json:"duration"`
}

// AgentResult is the output of running one agent to completion (or failure).
type AgentResult struct {
	Agent       AgentName        `json:"agent"`
	Text        string           `json:"text"`
	ToolCalls   []ToolInvocation `json:"tool_calls,omitempty"`
	Iterations  int              `json:"iterations"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   ErrorKind        `json:"error_kind,omitempty"`
	Cancelled   bool             `json:"cancelled"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
}

// Investigation is the top-level record returned to callers, covering the
// full lifecycle of one fraud-review request.
type Investigation struct {
	ID                  string                         `json:"id"`
	Input               TransactionInput               `json:"input"`
	CanonicalInputHash  string                         `json:"canonical_input_hash"`
	Status              InvestigationStatus            `json:"status"`
	AnalysisResults     map[AgentName]*AgentResult     `json:"analysis_results,omitempty"`
	ReportResult        *AgentResult                   `json:"report_result,omitempty"`
	FinalReport         string                         `json:"final_report,omitempty"`
	Error               string                         `json:"error,omitempty"`
	ErrorKind           ErrorKind                      `json:"error_kind,omitempty"`
	ProgressPercent     int                            `json:"progress_percent"`
	CreatedAt           time.Time                      `json:"created_at"`
	UpdatedAt           time.Time                      `json:"updated_at"`
	FromCache           bool                           `json:"from_cache"`
}

// DocumentChunk is a unit of pre-chunked, pre-embedded retrieval content.
// Document ingestion itself is out of scope; chunks arrive already split
// and embedded.
type DocumentChunk struct {
	ChunkID    string            `json:"chunk_id"`
	DocumentID string            `json:"document_id"`
	Source     string            `json:"source"`
	Text       string            `json:"text"`
	Embedding  []float32         `json:"embedding,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// RetrievalMethod selects which half of the hybrid retriever served a hit.
type RetrievalMethod string

const (
	RetrievalAuto  RetrievalMethod = "auto"
	RetrievalBM25  RetrievalMethod = "bm25"
	RetrievalDense RetrievalMethod = "dense"
)

// RetrievalHit is one scored result from the Vector Store.
type RetrievalHit struct {
	ChunkID string          `json:"chunk_id"`
	Score   float64         `json:"score"`
	Method  RetrievalMethod `json:"method"`
	Chunk   DocumentChunk   `json:"chunk"`
}

// CacheEntry is the stored envelope for a cached value, carrying its own
// expiry so callers can distinguish a fresh write from a stale one without
// a second store round-trip.
type CacheEntry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	Category  string    `json:"category"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL as of now.
func (c CacheEntry) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// ProgressEventKind enumerates the kinds of events the Progress Bus carries.
type ProgressEventKind string

const (
	EventInvestigationStarted ProgressEventKind = "investigation_started"
	EventAgentStarted         ProgressEventKind = "agent_started"
	EventToolCall             ProgressEventKind = "tool_call"
	EventToolResult           ProgressEventKind = "tool_result"
	EventAgentCompleted       ProgressEventKind = "agent_completed"
	EventProgress             ProgressEventKind = "progress"
	EventBufferOverflow       ProgressEventKind = "buffer_overflow"
	EventFinal                ProgressEventKind = "final"
	EventError                ProgressEventKind = "error"
)

// ProgressEvent is one entry in an investigation's ordered event stream.
type ProgressEvent struct {
	InvestigationID string            `json:"investigation_id"`
	Sequence        uint64            `json:"sequence"`
	Kind            ProgressEventKind `json:"kind"`
	Agent           AgentName         `json:"agent,omitempty"`
	Message         string            `json:"message,omitempty"`
	Progress        int               `json:"progress"`
	Payload         any               `json:"payload,omitempty"`
	Time            time.Time         `json:"time"`
}

// IsTerminal reports whether this event kind ends an investigation's stream.
func (e ProgressEvent) IsTerminal() bool {
	return e.Kind == EventFinal || e.Kind == EventError
}

// ToolSchema is the wire shape handed to an LLM provider's tool-use API.
// Lives in domain (rather than agentrt or llm) so both the Tool Registry
// and the LLM Gateway can depend on it without depending on each other.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
