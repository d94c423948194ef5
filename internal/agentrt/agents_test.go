package agentrt

import (
	"testing"

	"github.com/ovokpus/investigatorai/internal/domain"
)

func TestStandardAgentConfigsCoversFixedRoster(t *testing.T) {
	configs := StandardAgentConfigs()
	want := []domain.AgentName{
		domain.AgentRegulatoryResearch,
		domain.AgentEvidenceCollection,
		domain.AgentComplianceCheck,
		domain.AgentReportGeneration,
	}
	if len(configs) != len(want) {
		t.Fatalf("len(configs) = %d, want %d", len(configs), len(want))
	}
	for _, name := range want {
		cfg, ok := configs[name]
		if !ok {
			t.Fatalf("missing agent config for %s", name)
		}
		if cfg.Name != name {
			t.Errorf("configs[%s].Name = %s, want %s", name, cfg.Name, name)
		}
		if cfg.SystemPrompt == "" {
			t.Errorf("configs[%s].SystemPrompt is empty", name)
		}
		if len(cfg.AllowedTools) == 0 {
			t.Errorf("configs[%s].AllowedTools is empty", name)
		}
	}
}

func TestStandardAgentConfigsFirstToolHintIsAllowed(t *testing.T) {
	for name, cfg := range StandardAgentConfigs() {
		if cfg.FirstToolHint == "" {
			continue
		}
		found := false
		for _, tool := range cfg.AllowedTools {
			if tool == cfg.FirstToolHint {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("configs[%s].FirstToolHint %q is not in AllowedTools %v", name, cfg.FirstToolHint, cfg.AllowedTools)
		}
	}
}

func TestReportGenerationHasNoMandatoryFirstTool(t *testing.T) {
	cfg := StandardAgentConfigs()[domain.AgentReportGeneration]
	if cfg.FirstToolHint != "" {
		t.Errorf("FirstToolHint = %q, want empty for the synthesis role", cfg.FirstToolHint)
	}
}
