package investigation

import (
	"encoding/json"
	"fmt"
	"strings"

	"context"

	"github.com/ovokpus/investigatorai/internal/agentrt"
)

// RiskWeights is the configuration table driving
// calculate_transaction_risk's scoring. Coefficients live in configuration
// rather than as hard-coded constants (SPEC_FULL.md §9, resolving the
// open question on risk-scoring coefficients).
type RiskWeights struct {
	// AmountBreakpoints maps a transaction amount threshold to the score
	// contributed once the amount meets or exceeds it; breakpoints are
	// evaluated high-to-low and the first match wins.
	AmountBreakpoints []AmountBreakpoint
	// StructuringThreshold, StructuringWindow, and StructuringScore
	// detect amounts kept just under a reporting threshold (a classic
	// structuring pattern, spec.md §8 S1): an amount in
	// [StructuringThreshold-StructuringWindow, StructuringThreshold)
	// contributes StructuringScore in addition to its AmountBreakpoints
	// contribution. Zero StructuringThreshold disables the check.
	StructuringThreshold float64
	StructuringWindow    float64
	StructuringScore     float64
	// JurisdictionRisk maps an ISO-3166 country code to a risk score
	// contributed when it appears as either the origin or destination.
	// A missing entry contributes zero.
	JurisdictionRisk map[string]float64
	// CustomerRiskMultiplier maps a normalized customer_risk_rating
	// value (see normalizeKey) to a multiplier applied to the combined
	// amount+jurisdiction score.
	CustomerRiskMultiplier map[string]float64
	// AccountTypeMultiplier maps a normalized account_type value (see
	// normalizeKey) to a multiplier applied the same way.
	AccountTypeMultiplier map[string]float64
}

// AmountBreakpoint is one entry of RiskWeights.AmountBreakpoints.
type AmountBreakpoint struct {
	MinAmount float64
	Score     float64
}

// DefaultRiskWeights returns a reasonable, documented starting table
// covering spec.md:32's full risk_rating enum (Low, Medium, High,
// Critical) and account_type enum (Personal, Business, Corporate,
// Nonprofit, Professional Services, Gaming/Entertainment, Investment,
// Government).
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		AmountBreakpoints: []AmountBreakpoint{
			{MinAmount: 1_000_000, Score: 40},
			{MinAmount: 100_000, Score: 25},
			{MinAmount: 10_000, Score: 15},
			{MinAmount: 3_000, Score: 5},
		},
		StructuringThreshold: 10_000,
		StructuringWindow:    500,
		StructuringScore:     55,
		JurisdictionRisk: map[string]float64{
			"IR": 30, "KP": 30, "SY": 30, "CU": 25, "MM": 20,
			"VG": 35, "KY": 30, // classic offshore secrecy jurisdictions
		},
		CustomerRiskMultiplier: map[string]float64{
			"low": 1.0, "medium": 1.2, "high": 1.5, "critical": 2.0,
		},
		AccountTypeMultiplier: map[string]float64{
			"personal":              1.0,
			"business":              1.1,
			"corporate":             1.15,
			"nonprofit":             0.9,
			"professional_services": 1.05,
			"gaming_entertainment":  1.3,
			"investment":            1.2,
			"government":            0.8,
		},
	}
}

// normalizeKey folds a free-text enum value (e.g. "Professional
// Services", "Gaming/Entertainment", "Critical") down to the lookup key
// used by RiskWeights' multiplier maps, so matching is case- and
// punctuation-insensitive.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "/", "_", "-", "_").Replace(s)
}

// RiskTool answers calculate_transaction_risk. It is a pure function over
// its inputs and the configured weight table: no caching, no network
// calls, deterministic for identical arguments.
type RiskTool struct {
	weights RiskWeights
}

// NewRiskTool constructs the tool.
func NewRiskTool(weights RiskWeights) *RiskTool {
	return &RiskTool{weights: weights}
}

func (t *RiskTool) Name() string { return "calculate_transaction_risk" }

func (t *RiskTool) Description() string {
	return "Compute a risk score in [0,1] for a transaction from its amount, jurisdictions, customer risk rating, and account type."
}

func (t *RiskTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"amount": {"type": "number"},
			"origin_country": {"type": "string"},
			"destination_country": {"type": "string"},
			"customer_risk_rating": {"type": "string", "description": "Low, Medium, High, or Critical (case-insensitive)."},
			"account_type": {"type": "string", "description": "Personal, Business, Corporate, Nonprofit, Professional Services, Gaming/Entertainment, Investment, or Government (case-insensitive)."}
		},
		"required": ["amount", "origin_country", "destination_country"]
	}`)
}

type riskParams struct {
	Amount             float64 `json:"amount"`
	OriginCountry      string  `json:"origin_country"`
	DestinationCountry string  `json:"destination_country"`
	CustomerRiskRating string  `json:"customer_risk_rating"`
	AccountType        string  `json:"account_type"`
}

type riskResult struct {
	Score   float64  `json:"score"`
	Factors []string `json:"factors"`
}

func (t *RiskTool) Execute(_ context.Context, params json.RawMessage) (*agentrt.ToolResult, error) {
	var p riskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if p.Amount < 0 {
		return &agentrt.ToolResult{Content: "invalid parameters: amount must be non-negative", IsError: true}, nil
	}

	var score float64
	var factors []string

	for _, bp := range t.weights.AmountBreakpoints {
		if p.Amount >= bp.MinAmount {
			score += bp.Score
			factors = append(factors, fmt.Sprintf("amount >= %.0f: +%.1f", bp.MinAmount, bp.Score))
			break
		}
	}

	if t.weights.StructuringThreshold > 0 &&
		p.Amount >= t.weights.StructuringThreshold-t.weights.StructuringWindow &&
		p.Amount < t.weights.StructuringThreshold {
		score += t.weights.StructuringScore
		factors = append(factors, fmt.Sprintf("amount within %.0f of %.0f threshold (structuring): +%.1f",
			t.weights.StructuringWindow, t.weights.StructuringThreshold, t.weights.StructuringScore))
	}

	for _, country := range []string{p.OriginCountry, p.DestinationCountry} {
		if risk, ok := t.weights.JurisdictionRisk[strings.ToUpper(strings.TrimSpace(country))]; ok {
			score += risk
			factors = append(factors, fmt.Sprintf("jurisdiction %s: +%.1f", country, risk))
		}
	}

	if mult, ok := t.weights.CustomerRiskMultiplier[normalizeKey(p.CustomerRiskRating)]; ok && mult != 1.0 {
		delta := score * (mult - 1.0)
		score += delta
		factors = append(factors, fmt.Sprintf("customer risk %s: x%.2f", p.CustomerRiskRating, mult))
	}
	if mult, ok := t.weights.AccountTypeMultiplier[normalizeKey(p.AccountType)]; ok && mult != 1.0 {
		delta := score * (mult - 1.0)
		score += delta
		factors = append(factors, fmt.Sprintf("account type %s: x%.2f", p.AccountType, mult))
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	raw, err := json.Marshal(riskResult{Score: score / 100, Factors: factors})
	if err != nil {
		return &agentrt.ToolResult{Content: fmt.Sprintf("unavailable: %v", err), IsError: true}, nil
	}
	return &agentrt.ToolResult{Content: string(raw)}, nil
}
