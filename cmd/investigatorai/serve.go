package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/appconfig"
	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/domain"
	"github.com/ovokpus/investigatorai/internal/llm"
	"github.com/ovokpus/investigatorai/internal/observability"
	"github.com/ovokpus/investigatorai/internal/orchestrator"
	"github.com/ovokpus/investigatorai/internal/progress"
	"github.com/ovokpus/investigatorai/internal/rag"
	"github.com/ovokpus/investigatorai/internal/server"
	"github.com/ovokpus/investigatorai/internal/tools/investigation"
)

func buildServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the investigation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	return cmd
}

// runServe wires every component (Cache Store, Vector Store, Tool
// Registry, LLM Gateway, Agent Runtime, Orchestrator, Progress Bus,
// Observability) and serves the HTTP API until SIGINT/SIGTERM.
func runServe(ctx context.Context, configPath string) error {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	cacheStore := cache.NewStore(cache.StoreOptions{
		WriteTimeout:    cfg.Cache.WriteTimeout,
		JanitorInterval: cfg.Cache.JanitorInterval,
	})
	defer cacheStore.Close()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	cachedProvider := llm.NewCachedProvider(provider, cacheStore)
	limitedProvider := llm.NewLimitedProvider(cachedProvider, cfg.Concurrency.MaxInFlightLLMCalls)

	registry := buildToolRegistry(ctx, cfg, cacheStore, logger)
	registry.WithConcurrencyLimit(cfg.Concurrency.MaxInFlightToolCalls)

	tracer, shutdownTracing := observability.NewTracer(observability.TraceConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
	})
	defer shutdownTracing(context.Background())
	metrics := observability.NewInvestigationMetrics()

	runtime := agentrt.NewRuntime(registry, limitedProvider).WithObservability(metrics, tracer)
	bus := progress.NewBus(progress.BusOptions{})

	orch := orchestrator.New(runtime, agentrt.StandardAgentConfigs(), cacheStore, bus, orchestrator.Config{
		AnalysisDeadline:      cfg.Timeouts.AnalysisPhase,
		ReportDeadline:        cfg.Timeouts.ReportPhase,
		InvestigationDeadline: cfg.Timeouts.InvestigationTotal,
	}).WithObservability(metrics, tracer)

	handler := server.NewHandler(server.Config{
		Orchestrator: orch,
		Bus:          bus,
		Tools:        registry,
		Cache:        cacheStore,
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Mount(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func buildProvider(cfg *appconfig.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			DefaultModel: cfg.LLM.Model,
			MaxTokens:    cfg.LLM.MaxTokens,
		})
	default:
		return llm.NewAnthropicProvider(llm.AnthropicConfig{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			DefaultModel: cfg.LLM.Model,
			MaxTokens:    cfg.LLM.MaxTokens,
		})
	}
}

func buildToolRegistry(ctx context.Context, cfg *appconfig.Config, cacheStore *cache.Store, logger *observability.Logger) *agentrt.Registry {
	registry := agentrt.NewRegistry()

	var embedder rag.QueryEmbedder
	if cfg.LLM.APIKey != "" {
		if e, err := llm.NewOpenAIEmbedder(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel); err == nil {
			embedder = e
		}
	}
	chunks := loadRegulatoryChunks(ctx, cfg.Tools.RegulatoryDocsPath, logger)
	vectorStore := rag.NewStore(chunks, embedder)

	registry.Register(investigation.NewRegulatoryTool(vectorStore, cacheStore))
	registry.Register(investigation.NewFraudResearchTool(investigation.FraudResearchConfig{
		BaseURL: cfg.Tools.FraudResearchBaseURL,
		Timeout: cfg.Timeouts.NetworkTool,
	}, cacheStore))
	registry.Register(investigation.NewWebIntelligenceTool(investigation.WebIntelligenceConfig{
		BaseURL: cfg.Tools.WebIntelBaseURL,
		APIKey:  cfg.Tools.WebIntelAPIKey,
		Timeout: cfg.Timeouts.NetworkTool,
	}, cacheStore))
	registry.Register(investigation.NewExchangeRateTool(investigation.ExchangeRateConfig{
		BaseURL: cfg.Tools.ExchangeRateBaseURL,
		APIKey:  cfg.Tools.ExchangeRateAPIKey,
		Timeout: cfg.Timeouts.NetworkTool,
	}, cacheStore))
	registry.Register(investigation.NewRiskTool(investigation.DefaultRiskWeights()))
	registry.Register(investigation.NewComplianceTool(investigation.DefaultFilingThresholds()))

	return registry
}

// loadRegulatoryChunks reads pre-chunked, pre-embedded regulatory
// documents from path (document ingestion itself is out of scope; chunks
// are expected to arrive already split and embedded). An empty or
// unreadable path yields an empty index rather than failing startup.
func loadRegulatoryChunks(ctx context.Context, path string, logger *observability.Logger) []domain.DocumentChunk {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn(ctx, "regulatory documents unavailable, starting with an empty index", "path", path, "error", err)
		return nil
	}
	var chunks []domain.DocumentChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		logger.Warn(ctx, "regulatory documents malformed, starting with an empty index", "path", path, "error", err)
		return nil
	}
	return chunks
}
