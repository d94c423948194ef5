package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ovokpus/investigatorai/internal/cache"
)

// CachedProvider wraps a Provider and applies the LLM Gateway's caching
// rule: a response is cached, and served from cache, only when the
// request's Temperature is exactly zero (a non-zero temperature is, by
// definition, not hash-stable).
type CachedProvider struct {
	inner Provider
	cache *cache.Store
}

// NewCachedProvider wraps inner with cache-backed memoization.
func NewCachedProvider(inner Provider, c *cache.Store) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c}
}

func (c *CachedProvider) Name() string { return c.inner.Name() }

func (c *CachedProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if req.Temperature != 0 {
		return c.inner.Complete(ctx, req)
	}

	key := requestCacheKey(c.inner.Name(), req)
	if resp, ok := cache.GetJSON[Response](ctx, c.cache, key); ok {
		return &resp, nil
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	cache.PutJSON(ctx, c.cache, key, *resp, cache.TTLFor(cache.CategoryLLMCompletion))
	return resp, nil
}

func requestCacheKey(provider string, req *Request) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(req.Model))
	h.Write([]byte{0})
	h.Write([]byte(req.System))
	enc, _ := json.Marshal(req.Messages)
	h.Write(enc)
	toolEnc, _ := json.Marshal(req.Tools)
	h.Write(toolEnc)
	return string(cache.CategoryLLMCompletion) + ":" + hex.EncodeToString(h.Sum(nil))
}
