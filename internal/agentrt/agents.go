package agentrt

import (
	"github.com/ovokpus/investigatorai/internal/domain"
)

// StandardAgentConfigs returns the four fixed agent configurations of
// SPEC_FULL.md §5.5's table, in no particular order. The Orchestrator
// dispatches RegulatoryResearch, EvidenceCollection, and ComplianceCheck
// concurrently, then ReportGeneration once the first three have settled.
func StandardAgentConfigs() map[domain.AgentName]AgentConfig {
	return map[domain.AgentName]AgentConfig{
		domain.AgentRegulatoryResearch: {
			Name: domain.AgentRegulatoryResearch,
			SystemPrompt: "You are a regulatory research analyst on a fraud investigation team. " +
				"Given a transaction, identify which regulations, sanctions regimes, and reporting " +
				"obligations (e.g. BSA, SAR, OFAC) plausibly apply, and cite the regulatory documents " +
				"and fraud-research sources that informed your judgment. Be precise about jurisdiction.",
			AllowedTools: []string{
				"search_regulatory_documents",
				"search_fraud_research",
				"search_web_intelligence",
			},
			FirstToolHint: "search_regulatory_documents",
		},
		domain.AgentEvidenceCollection: {
			Name: domain.AgentEvidenceCollection,
			SystemPrompt: "You are an evidence collection analyst on a fraud investigation team. " +
				"Given a transaction, compute its quantitative risk score, gather supporting exchange-rate " +
				"and open-source intelligence evidence, and summarize what the numbers show and what " +
				"remains uncertain.",
			AllowedTools: []string{
				"calculate_transaction_risk",
				"get_exchange_rate_data",
				"search_web_intelligence",
			},
			FirstToolHint: "calculate_transaction_risk",
		},
		domain.AgentComplianceCheck: {
			Name: domain.AgentComplianceCheck,
			SystemPrompt: "You are a compliance analyst on a fraud investigation team. " +
				"Given a transaction, determine which compliance thresholds it crosses and which " +
				"regulatory filings or reviews are required as a result, grounding each requirement in " +
				"the regulatory documents you retrieve.",
			AllowedTools: []string{
				"check_compliance_requirements",
				"search_regulatory_documents",
			},
			FirstToolHint: "check_compliance_requirements",
		},
		domain.AgentReportGeneration: {
			Name: domain.AgentReportGeneration,
			SystemPrompt: "You are the lead analyst producing the final fraud investigation report. " +
				"You have been given the findings of the regulatory research, evidence collection, and " +
				"compliance check analysts. Synthesize them into one coherent report: a summary " +
				"verdict, the key evidence, the applicable regulations and compliance requirements, and " +
				"a recommended disposition. Use search_regulatory_documents or " +
				"check_compliance_requirements only to resolve a gap or contradiction in the upstream " +
				"findings, not to redo their work.",
			AllowedTools: []string{
				"search_regulatory_documents",
				"check_compliance_requirements",
			},
			// Synthesis role: no first tool is mandatory.
		},
	}
}
