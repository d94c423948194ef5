// Package appconfig is the env-var-driven configuration surface for the
// investigation service: LLM credentials/model, cache TTL overrides,
// retrieval method, worker pool sizes, and tracing endpoint.
//
// Grounded on the teacher's internal/config package: plain structs with
// yaml tags loaded from a YAML file via gopkg.in/yaml.v3, then overridden
// field-by-field from environment variables (config.go's applyEnvOverrides
// idiom), rather than a flag/viper-based loader.
package appconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the investigation service's full configuration surface.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Cache       CacheConfig       `yaml:"cache"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Server      ServerConfig      `yaml:"server"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Tools       ToolsConfig       `yaml:"tools"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LLMConfig configures the LLM Gateway's primary and fallback providers.
type LLMConfig struct {
	Provider        string `yaml:"provider"` // "anthropic" (default) or "openai"
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	MaxTokens       int    `yaml:"max_tokens"`
	BaseURL         string `yaml:"base_url"`
	FallbackAPIKey  string `yaml:"fallback_api_key"`
	FallbackModel   string `yaml:"fallback_model"`
	FallbackBaseURL string `yaml:"fallback_base_url"`
	EmbeddingModel  string `yaml:"embedding_model"`
}

// RetrievalConfig configures the Vector Store's hybrid retrieval policy.
type RetrievalConfig struct {
	Method      string `yaml:"method"` // "auto" (default), "bm25", "dense"
	BM25Enabled bool   `yaml:"bm25_enabled"`
}

// CacheConfig configures the Cache Store, including per-category TTL
// overrides (zero means "use the built-in default for that category").
type CacheConfig struct {
	WriteTimeout            time.Duration `yaml:"write_timeout"`
	JanitorInterval         time.Duration `yaml:"janitor_interval"`
	InvestigationResultTTL  time.Duration `yaml:"investigation_result_ttl"`
	LLMCompletionTTL        time.Duration `yaml:"llm_completion_ttl"`
	VectorSearchTTL         time.Duration `yaml:"vector_search_ttl"`
	WebIntelligenceTTL      time.Duration `yaml:"web_intelligence_ttl"`
	AcademicResearchTTL     time.Duration `yaml:"academic_research_ttl"`
	ExchangeRateTTL         time.Duration `yaml:"exchange_rate_ttl"`
}

// TimeoutConfig configures the per-call deadlines of SPEC_FULL.md §6.
type TimeoutConfig struct {
	LLMCall            time.Duration `yaml:"llm_call"`
	NetworkTool        time.Duration `yaml:"network_tool"`
	VectorSearch       time.Duration `yaml:"vector_search"`
	AgentTotal         time.Duration `yaml:"agent_total"`
	AnalysisPhase      time.Duration `yaml:"analysis_phase"`
	ReportPhase        time.Duration `yaml:"report_phase"`
	InvestigationTotal time.Duration `yaml:"investigation_total"`
}

// ConcurrencyConfig bounds the in-flight worker pools.
type ConcurrencyConfig struct {
	MaxInFlightLLMCalls  int `yaml:"max_in_flight_llm_calls"`
	MaxInFlightToolCalls int `yaml:"max_in_flight_tool_calls"`
}

// ServerConfig configures the HTTP ingress adapter.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint       string `yaml:"endpoint"`
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
}

// ToolsConfig configures the network-backed investigation tools' upstream
// providers.
type ToolsConfig struct {
	RegulatoryDocsPath   string `yaml:"regulatory_docs_path"`
	FraudResearchBaseURL string `yaml:"fraud_research_base_url"`
	WebIntelBaseURL      string `yaml:"web_intel_base_url"`
	WebIntelAPIKey       string `yaml:"web_intel_api_key"`
	ExchangeRateBaseURL  string `yaml:"exchange_rate_base_url"`
	ExchangeRateAPIKey   string `yaml:"exchange_rate_api_key"`
}

// LoggingConfig configures the structured logger (internal/observability.Logger).
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info" (default), "warn", "error"
	Format string `yaml:"format"` // "json" (default) or "text"
}

// Default returns a Config populated with every SPEC_FULL.md default value.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "anthropic",
			Model:          "claude-sonnet-4-20250514",
			MaxTokens:      4096,
			EmbeddingModel: "text-embedding-3-large",
		},
		Retrieval: RetrievalConfig{
			Method:      "auto",
			BM25Enabled: true,
		},
		Cache: CacheConfig{
			WriteTimeout:    2 * time.Second,
			JanitorInterval: time.Minute,
		},
		Timeouts: TimeoutConfig{
			LLMCall:            60 * time.Second,
			NetworkTool:        15 * time.Second,
			VectorSearch:       2 * time.Second,
			AgentTotal:         75 * time.Second,
			AnalysisPhase:      120 * time.Second,
			ReportPhase:        90 * time.Second,
			InvestigationTotal: 180 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			MaxInFlightLLMCalls:  32,
			MaxInFlightToolCalls: 64,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Tracing: TracingConfig{
			ServiceName:    "investigatorai",
			ServiceVersion: "0.1.0",
			Environment:    "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (if non-empty and present) as YAML over the defaults,
// then applies environment variable overrides, matching the teacher's
// config.go load-then-override ordering.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("appconfig: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("appconfig: parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_API_KEY")); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_PROVIDER")); v != "" {
		cfg.LLM.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_MODEL")); v != "" {
		cfg.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_MAX_TOKENS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_BASE_URL")); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_FALLBACK_API_KEY")); v != "" {
		cfg.LLM.FallbackAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LLM_FALLBACK_MODEL")); v != "" {
		cfg.LLM.FallbackModel = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_EMBEDDING_MODEL")); v != "" {
		cfg.LLM.EmbeddingModel = v
	}

	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_RETRIEVAL_METHOD")); v != "" {
		cfg.Retrieval.Method = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_BM25_ENABLED")); v != "" {
		cfg.Retrieval.BM25Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	applyDurationEnv("INVESTIGATORAI_CACHE_INVESTIGATION_RESULT_TTL", &cfg.Cache.InvestigationResultTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_LLM_COMPLETION_TTL", &cfg.Cache.LLMCompletionTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_VECTOR_SEARCH_TTL", &cfg.Cache.VectorSearchTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_WEB_INTELLIGENCE_TTL", &cfg.Cache.WebIntelligenceTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_ACADEMIC_RESEARCH_TTL", &cfg.Cache.AcademicResearchTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_EXCHANGE_RATE_TTL", &cfg.Cache.ExchangeRateTTL)
	applyDurationEnv("INVESTIGATORAI_CACHE_WRITE_TIMEOUT", &cfg.Cache.WriteTimeout)

	applyDurationEnv("INVESTIGATORAI_TIMEOUT_LLM_CALL", &cfg.Timeouts.LLMCall)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_NETWORK_TOOL", &cfg.Timeouts.NetworkTool)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_VECTOR_SEARCH", &cfg.Timeouts.VectorSearch)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_AGENT_TOTAL", &cfg.Timeouts.AgentTotal)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_ANALYSIS_PHASE", &cfg.Timeouts.AnalysisPhase)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_REPORT_PHASE", &cfg.Timeouts.ReportPhase)
	applyDurationEnv("INVESTIGATORAI_TIMEOUT_INVESTIGATION_TOTAL", &cfg.Timeouts.InvestigationTotal)

	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_MAX_INFLIGHT_LLM_CALLS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency.MaxInFlightLLMCalls = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_MAX_INFLIGHT_TOOL_CALLS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency.MaxInFlightToolCalls = parsed
		}
	}

	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_TRACING_ENDPOINT")); v != "" {
		cfg.Tracing.Endpoint = v
	}

	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_REGULATORY_DOCS_PATH")); v != "" {
		cfg.Tools.RegulatoryDocsPath = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_FRAUD_RESEARCH_BASE_URL")); v != "" {
		cfg.Tools.FraudResearchBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_WEB_INTEL_BASE_URL")); v != "" {
		cfg.Tools.WebIntelBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_WEB_INTEL_API_KEY")); v != "" {
		cfg.Tools.WebIntelAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_EXCHANGE_RATE_BASE_URL")); v != "" {
		cfg.Tools.ExchangeRateBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_EXCHANGE_RATE_API_KEY")); v != "" {
		cfg.Tools.ExchangeRateAPIKey = v
	}

	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("INVESTIGATORAI_LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
}

func applyDurationEnv(key string, dst *time.Duration) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		*dst = parsed
	}
}
