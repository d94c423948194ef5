package investigation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ovokpus/investigatorai/internal/agentrt"
)

// FilingThreshold is one compliance rule check_compliance_requirements
// evaluates a transaction against. A rule triggers when any one of its
// three independent conditions holds: the amount meets Threshold, the
// transaction's destination country is in HighRiskJurisdictions, or its
// description contains one of DescriptionKeywords.
type FilingThreshold struct {
	FilingType   string // e.g. "CTR", "SAR"
	Threshold    float64
	DeadlineDays int
	Citation     string
	Description  string
	// HighRiskJurisdictions independently triggers this filing when the
	// transaction's destination country (name or ISO code, matched
	// case-insensitively) is a member, regardless of amount.
	HighRiskJurisdictions map[string]bool
	// DescriptionKeywords independently triggers this filing when any
	// keyword appears (case-insensitively) in the transaction's
	// free-text description.
	DescriptionKeywords []string
}

// DefaultFilingThresholds returns the standard US BSA/AML rules this tool
// checks by default: a Currency Transaction Report at $10,000 (31 CFR
// 1010.311, 15-day deadline) and a Suspicious Activity Report (31 CFR
// 1020.320, 30-day deadline) triggered by a lower $5,000 amount floor, a
// destination in a classic high-risk/offshore jurisdiction, or a
// description naming a structuring pattern directly.
func DefaultFilingThresholds() []FilingThreshold {
	return []FilingThreshold{
		{
			FilingType:   "CTR",
			Threshold:    10_000,
			DeadlineDays: 15,
			Citation:     "31 CFR 1010.311",
			Description:  "Currency Transaction Report required for cash transactions at or above $10,000.",
		},
		{
			FilingType:   "SAR",
			Threshold:    5_000,
			DeadlineDays: 30,
			Citation:     "31 CFR 1020.320",
			Description:  "Suspicious Activity Report required when amount, destination jurisdiction, or narrative risk factors warrant it.",
			HighRiskJurisdictions: map[string]bool{
				"ir": true, "kp": true, "sy": true, "cu": true, "mm": true,
				"vg": true, "ky": true,
				"iran": true, "north korea": true, "syria": true, "cuba": true, "myanmar": true,
				"british virgin islands": true, "cayman islands": true,
			},
			DescriptionKeywords: []string{"structuring", "smurfing"},
		},
	}
}

// ComplianceTool answers check_compliance_requirements, a pure function
// over a transaction's amount, destination jurisdiction, and description
// against the configured threshold table.
type ComplianceTool struct {
	thresholds []FilingThreshold
}

// NewComplianceTool constructs the tool.
func NewComplianceTool(thresholds []FilingThreshold) *ComplianceTool {
	return &ComplianceTool{thresholds: thresholds}
}

func (t *ComplianceTool) Name() string { return "check_compliance_requirements" }

func (t *ComplianceTool) Description() string {
	return "Check which regulatory filing requirements (e.g. CTR, SAR) a transaction's amount, destination country, and description trigger."
}

func (t *ComplianceTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"amount": {"type": "number"},
			"currency": {"type": "string"},
			"country_to": {"type": "string", "description": "Destination country, as a name or ISO-3166 code."},
			"description": {"type": "string", "description": "Free-text transaction narrative."}
		},
		"required": ["amount", "country_to"]
	}`)
}

type complianceParams struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CountryTo   string  `json:"country_to"`
	Description string  `json:"description"`
}

type complianceHit struct {
	FilingType   string  `json:"filing_type"`
	Threshold    float64 `json:"threshold"`
	DeadlineDays int     `json:"deadline_days"`
	RequiredBool bool    `json:"required_bool"`
	Citation     string  `json:"citation"`
}

func (t *ComplianceTool) Execute(_ context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p complianceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if p.Amount < 0 {
		return &agentrt.ToolResult{Content: "invalid parameters: amount must be non-negative", IsError: true}, nil
	}

	country := strings.ToLower(strings.TrimSpace(p.CountryTo))
	description := strings.ToLower(p.Description)

	hits := make([]complianceHit, 0, len(t.thresholds))
	for _, th := range t.thresholds {
		triggered := th.Threshold > 0 && p.Amount >= th.Threshold
		if !triggered && th.HighRiskJurisdictions[country] {
			triggered = true
		}
		if !triggered {
			for _, kw := range th.DescriptionKeywords {
				if strings.Contains(description, kw) {
					triggered = true
					break
				}
			}
		}
		hits = append(hits, complianceHit{
			FilingType:   th.FilingType,
			Threshold:    th.Threshold,
			DeadlineDays: th.DeadlineDays,
			RequiredBool: triggered,
			Citation:     th.Citation,
		})
	}

	raw, err := json.Marshal(hits)
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	return &agentrt.ToolResult{Content: string(raw)}, nil
}
