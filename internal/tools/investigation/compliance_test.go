package investigation

import (
	"context"
	"encoding/json"
	"testing"
)

func TestComplianceToolThresholds(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{Amount: 10_000, Currency: "USD", CountryTo: "US"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hits []complianceHit
	if err := json.Unmarshal([]byte(res.Content), &hits); err != nil {
		t.Fatalf("bad result json: %v", err)
	}
	ctrRequired := false
	for _, h := range hits {
		if h.FilingType == "CTR" {
			ctrRequired = h.RequiredBool
		}
	}
	if !ctrRequired {
		t.Fatalf("expected CTR to trigger at exactly the threshold amount, got %+v", hits)
	}
}

func TestComplianceToolBelowAllThresholds(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{Amount: 1, Currency: "USD", CountryTo: "US"})
	res, _ := tool.Execute(context.Background(), params)
	var hits []complianceHit
	json.Unmarshal([]byte(res.Content), &hits)
	for _, h := range hits {
		if h.RequiredBool {
			t.Fatalf("expected no filings required for a $1 domestic transaction, got %+v", hits)
		}
	}
}

func TestComplianceToolRejectsNegativeAmount(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{Amount: -1, CountryTo: "US"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error result for negative amount")
	}
}

// TestComplianceToolScenarioS2OffshoreSARRequired covers spec.md §8 S2: a
// payment to a classic offshore secrecy jurisdiction must produce a SAR
// filing requirement with a 30-day deadline, driven by country_to alone.
func TestComplianceToolScenarioS2OffshoreSARRequired(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{
		Amount: 85_000, Currency: "USD", CountryTo: "British Virgin Islands",
		Description: "Equipment purchase via offshore supplier",
	})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hits []complianceHit
	if err := json.Unmarshal([]byte(res.Content), &hits); err != nil {
		t.Fatalf("bad result json: %v", err)
	}
	var sar *complianceHit
	for i, h := range hits {
		if h.FilingType == "SAR" {
			sar = &hits[i]
		}
	}
	if sar == nil || !sar.RequiredBool {
		t.Fatalf("expected a required SAR filing, got %+v", hits)
	}
	if sar.DeadlineDays != 30 {
		t.Fatalf("SAR deadline_days = %d, want 30", sar.DeadlineDays)
	}
}

// TestComplianceToolJurisdictionTriggersSARBelowAmountFloor covers the
// jurisdiction-only trigger path: a small payment to a sanctioned
// jurisdiction still requires a SAR even though it is well under the
// amount floor.
func TestComplianceToolJurisdictionTriggersSARBelowAmountFloor(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{Amount: 200, Currency: "USD", CountryTo: "IR"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hits []complianceHit
	json.Unmarshal([]byte(res.Content), &hits)
	for _, h := range hits {
		if h.FilingType == "SAR" && !h.RequiredBool {
			t.Fatalf("expected SAR to be required for a transaction to a sanctioned jurisdiction, got %+v", hits)
		}
	}
}

func TestComplianceToolDescriptionKeywordTriggersSAR(t *testing.T) {
	tool := NewComplianceTool(DefaultFilingThresholds())
	params, _ := json.Marshal(complianceParams{
		Amount: 300, Currency: "USD", CountryTo: "US",
		Description: "Series of deposits consistent with structuring",
	})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hits []complianceHit
	json.Unmarshal([]byte(res.Content), &hits)
	for _, h := range hits {
		if h.FilingType == "SAR" && !h.RequiredBool {
			t.Fatalf("expected SAR to be required when description names structuring, got %+v", hits)
		}
	}
}
