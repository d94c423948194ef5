package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ovokpus/investigatorai/internal/cache"
	"github.com/ovokpus/investigatorai/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleInvestigate runs an investigation to completion and returns the
// finished Investigation as a single JSON response.
func (h *Handler) handleInvestigate(w http.ResponseWriter, r *http.Request) {
	var input domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	inv, err := h.cfg.Orchestrator.Investigate(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusOK
	if inv.ErrorKind == domain.ErrorKindContextOverflow {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, inv)
}

// handleInvestigateStream runs an investigation in the background and
// streams its Progress Bus events to the caller as Server-Sent Events
// until a terminal event (final or error) arrives.
//
// Grounded on the SSE-writing idiom confirmed in the teacher's
// anthropic_test.go TestStreamingResponse: set text/event-stream, write
// one `data: <json>\n\n` frame per event, Flush after each write.
func (h *Handler) handleInvestigateStream(w http.ResponseWriter, r *http.Request) {
	var input domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id := h.cfg.Orchestrator.NewInvestigationID()
	events, unsubscribe := h.cfg.Bus.Subscribe(id)
	defer unsubscribe()

	runCtx := context.WithoutCancel(r.Context())
	go h.cfg.Orchestrator.InvestigateWithID(runCtx, id, input)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "event: investigation_id\ndata: %q\n\n", id)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
			if event.IsTerminal() {
				return
			}
		}
	}
}

// toolQuery builds the JSON params a tool's Execute expects from an
// http.Request's query string.
type toolQuery func(r *http.Request) json.RawMessage

func toolQueryRegulatory(r *http.Request) json.RawMessage {
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))
	b, _ := json.Marshal(map[string]any{"query": r.URL.Query().Get("query"), "k": k})
	return b
}

func toolQueryWebIntel(r *http.Request) json.RawMessage {
	n, _ := strconv.Atoi(r.URL.Query().Get("result_count"))
	b, _ := json.Marshal(map[string]any{"query": r.URL.Query().Get("query"), "result_count": n})
	return b
}

func toolQueryFraudResearch(r *http.Request) json.RawMessage {
	n, _ := strconv.Atoi(r.URL.Query().Get("max_results"))
	b, _ := json.Marshal(map[string]any{"query": r.URL.Query().Get("query"), "max_results": n})
	return b
}

func toolQueryExchangeRate(r *http.Request) json.RawMessage {
	b, _ := json.Marshal(map[string]any{"base": r.URL.Query().Get("base"), "quote": r.URL.Query().Get("quote")})
	return b
}

// handleToolGet adapts a GET query string directly onto one Tool
// Registry entry, giving operators a way to exercise a single tool (e.g.
// for smoke-testing an upstream API key) without running a full
// investigation.
func (h *Handler) handleToolGet(toolName string, build toolQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := build(r)
		res, err := h.cfg.Tools.Execute(r.Context(), toolName, params)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		status := http.StatusOK
		if res.IsError {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, res)
	}
}

// healthResponse is /health's body.
type healthResponse struct {
	Status string        `json:"status"`
	Uptime time.Duration `json:"uptime"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Uptime: time.Since(h.startedAt)})
}

// handleCacheStats reports the Cache Store's total size and per-category
// occupancy.
func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{"total_entries": h.cfg.Cache.Len()}
	perCategory := make(map[string]int, len(cache.AllCategories()))
	for _, c := range cache.AllCategories() {
		perCategory[string(c)] = h.cfg.Cache.CountPrefix(string(c) + ":")
	}
	stats["by_category"] = perCategory
	writeJSON(w, http.StatusOK, stats)
}

// handleCacheClear clears the whole cache, or one category if {category}
// was supplied in the path.
func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	prefix := ""
	if category != "" {
		prefix = category + ":"
	}
	removed := h.cfg.Cache.Clear(prefix)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
