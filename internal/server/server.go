// Package server is the HTTP ingress adapter: it exposes the
// orchestrator, tool registry, and cache store over a REST+SSE API.
//
// Grounded on the teacher's internal/web.Handler shape (a *http.ServeMux
// wrapped behind a small Mount() chain of middleware) narrowed to a JSON
// API with no template/session/UI surface, since this system has no
// dashboard to serve.
package server

import (
	"net/http"
	"time"

	"github.com/ovokpus/investigatorai/internal/agentrt"
	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/observability"
	"github.com/ovokpus/investigatorai/internal/orchestrator"
	"github.com/ovokpus/investigatorai/internal/progress"
)

// Config wires the dependencies a Handler dispatches requests against.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Bus          *progress.Bus
	Tools        *agentrt.Registry
	Cache        *cache.Store
	Logger       *observability.Logger
}

// Handler is the investigation service's HTTP API.
type Handler struct {
	cfg       Config
	mux       *http.ServeMux
	startedAt time.Time
}

// NewHandler builds a Handler with every route registered.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = observability.NewLogger(observability.LogConfig{})
	}
	h := &Handler{cfg: cfg, mux: http.NewServeMux(), startedAt: time.Now()}
	h.setupRoutes()
	return h
}

func (h *Handler) setupRoutes() {
	h.mux.HandleFunc("POST /investigate", h.handleInvestigate)
	h.mux.HandleFunc("POST /investigate/stream", h.handleInvestigateStream)
	h.mux.HandleFunc("GET /search", h.handleToolGet("search_regulatory_documents", toolQueryRegulatory))
	h.mux.HandleFunc("GET /web-search", h.handleToolGet("search_web_intelligence", toolQueryWebIntel))
	h.mux.HandleFunc("GET /arxiv-search", h.handleToolGet("search_fraud_research", toolQueryFraudResearch))
	h.mux.HandleFunc("GET /exchange-rate", h.handleToolGet("get_exchange_rate_data", toolQueryExchangeRate))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /cache/stats", h.handleCacheStats)
	h.mux.HandleFunc("DELETE /cache/clear", h.handleCacheClear)
	h.mux.HandleFunc("DELETE /cache/clear/{category}", h.handleCacheClear)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Mount wraps the Handler in its middleware chain.
func (h *Handler) Mount() http.Handler {
	return LoggingMiddleware(h.cfg.Logger)(h)
}
