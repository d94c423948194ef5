// Package investigation implements the six tools the analysis agents call:
// two pure calculators and four network-backed lookups that share a common
// cached, retrying HTTP helper.
package investigation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ovokpus/investigatorai/internal/backoff"
	"github.com/ovokpus/investigatorai/internal/cache"
)

// httpClient is the shared shape every network tool in this package
// builds on: a timeout-bound *http.Client, a cache.Store lookup keyed by
// the request's canonical arguments, and a single retry on transient
// failure with backoff capped at 2 seconds, per SPEC_FULL.md §5.3.
//
// Grounded on the teacher's internal/agent/executor.go retry loop
// (attempt/backoff/timeout shape) and internal/tools/websearch/search.go
// (http.Client-with-timeout-plus-cache-map-on-the-tool-struct idiom).
type httpClient struct {
	client   *http.Client
	cache    *cache.Store
	category cache.Category
	policy   backoff.BackoffPolicy
}

func newHTTPClient(c *cache.Store, category cache.Category, timeout time.Duration) *httpClient {
	return &httpClient{
		client:   &http.Client{Timeout: timeout},
		cache:    c,
		category: category,
		policy: backoff.BackoffPolicy{
			InitialMs: 250,
			MaxMs:     2000,
			Factor:    2,
			Jitter:    0.1,
		},
	}
}

// getJSON issues a GET to url, decoding a JSON response into dst. It checks
// the cache first (key derived from the category and the supplied cache
// args), and on a miss performs the request with one retry on a
// retryable failure (network error or 5xx), honoring the 2s-capped
// backoff policy. On definitive failure it returns an error whose message
// is meant to be surfaced to the caller as "unavailable: <reason>".
func (h *httpClient) getJSON(ctx context.Context, url string, cacheArgs map[string]string, dst any) (cacheHit bool, err error) {
	return h.getJSONWithHeaders(ctx, url, nil, cacheArgs, dst)
}

// getJSONWithHeaders is getJSON with additional request headers (e.g. an
// Authorization bearer token), for providers that require one.
func (h *httpClient) getJSONWithHeaders(ctx context.Context, url string, headers map[string]string, cacheArgs map[string]string, dst any) (cacheHit bool, err error) {
	key := cache.CanonicalKey(string(h.category), cacheArgs)
	if raw, ok := h.cache.Get(ctx, key); ok {
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			return true, nil
		}
	}

	var lastErr error
	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, reqErr := h.doGet(ctx, url, headers)
		if reqErr == nil {
			if jsonErr := json.Unmarshal(raw, dst); jsonErr != nil {
				return false, fmt.Errorf("decode response: %w", jsonErr)
			}
			h.cache.Put(ctx, key, raw, cache.TTLFor(h.category))
			return false, nil
		}
		lastErr = reqErr
		if attempt == maxAttempts || !isRetryable(reqErr) {
			break
		}
		sleep := backoff.ComputeBackoff(h.policy, attempt)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	return false, fmt.Errorf("unavailable: %w", lastErr)
}

func (h *httpClient) doGet(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &permanentHTTPError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

// postJSON mirrors getJSON for POST requests with a JSON body (used by
// search_web_intelligence).
func (h *httpClient) postJSON(ctx context.Context, url string, body any, cacheArgs map[string]string, dst any) (cacheHit bool, err error) {
	key := cache.CanonicalKey(string(h.category), cacheArgs)
	if raw, ok := h.cache.Get(ctx, key); ok {
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			return true, nil
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, reqErr := h.doPost(ctx, url, payload)
		if reqErr == nil {
			if jsonErr := json.Unmarshal(raw, dst); jsonErr != nil {
				return false, fmt.Errorf("decode response: %w", jsonErr)
			}
			h.cache.Put(ctx, key, raw, cache.TTLFor(h.category))
			return false, nil
		}
		lastErr = reqErr
		if attempt == maxAttempts || !isRetryable(reqErr) {
			break
		}
		sleep := backoff.ComputeBackoff(h.policy, attempt)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	return false, fmt.Errorf("unavailable: %w", lastErr)
}

func (h *httpClient) doPost(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &permanentHTTPError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

// permanentHTTPError marks a 4xx response as non-retryable.
type permanentHTTPError struct {
	status int
	body   string
}

func (e *permanentHTTPError) Error() string {
	return fmt.Sprintf("client error: status %d: %s", e.status, e.body)
}

func isRetryable(err error) bool {
	var perm *permanentHTTPError
	return !errors.As(err, &perm)
}
