package investigation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ovokpus/investigatorai/internal/cache"
)

func TestHTTPClientRetriesOnceOn5xxThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rate": 1.1, "as_of": "2026-01-01"}`))
	}))
	defer srv.Close()

	store := cache.NewStore(cache.StoreOptions{})
	defer store.Close()
	hc := newHTTPClient(store, cache.CategoryExchangeRate, 5*time.Second)

	var resp exchangeRateResponse
	hit, err := hc.getJSON(context.Background(), srv.URL, map[string]string{"k": "v"}, &resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Fatalf("expected cache miss on first call")
	}
	if resp.Rate != 1.1 {
		t.Fatalf("got rate %v, want 1.1", resp.Rate)
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected exactly one retry (2 attempts), got %d", attempts.Load())
	}
}

func TestHTTPClientDoesNotRetryOn4xx(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	store := cache.NewStore(cache.StoreOptions{})
	defer store.Close()
	hc := newHTTPClient(store, cache.CategoryExchangeRate, 5*time.Second)

	var resp exchangeRateResponse
	_, err := hc.getJSON(context.Background(), srv.URL, map[string]string{"k": "v2"}, &resp)
	if err == nil {
		t.Fatalf("expected error on 4xx response")
	}
	if attempts.Load() != 1 {
		t.Fatalf("expected no retry on a permanent 4xx, got %d attempts", attempts.Load())
	}
}

func TestHTTPClientServesFromCacheOnSecondCall(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rate": 2.0}`))
	}))
	defer srv.Close()

	store := cache.NewStore(cache.StoreOptions{})
	defer store.Close()
	hc := newHTTPClient(store, cache.CategoryExchangeRate, 5*time.Second)

	var resp1, resp2 exchangeRateResponse
	hc.getJSON(context.Background(), srv.URL, map[string]string{"k": "v3"}, &resp1)
	hit, err := hc.getJSON(context.Background(), srv.URL, map[string]string{"k": "v3"}, &resp2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hit {
		t.Fatalf("expected second call to hit cache")
	}
	if attempts.Load() != 1 {
		t.Fatalf("expected only one upstream call, got %d", attempts.Load())
	}
}
