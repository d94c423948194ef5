package llm

import (
	"context"
	"testing"

	"github.com/ovokpus/investigatorai/internal/cache"
)

type stubProvider struct {
	calls int
	resp  *Response
	err   error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestCachedProviderSkipsCacheForNonZeroTemperature(t *testing.T) {
	store := cache.NewStore(cache.StoreOptions{})
	defer store.Close()
	inner := &stubProvider{resp: &Response{Text: "hi"}}
	p := NewCachedProvider(inner, store)

	req := &Request{Messages: []Message{{Role: "user", Content: "hello"}}, Temperature: 0.7}
	p.Complete(context.Background(), req)
	p.Complete(context.Background(), req)

	if inner.calls != 2 {
		t.Fatalf("expected no caching at non-zero temperature, got %d calls", inner.calls)
	}
}

func TestCachedProviderCachesAtZeroTemperature(t *testing.T) {
	store := cache.NewStore(cache.StoreOptions{})
	defer store.Close()
	inner := &stubProvider{resp: &Response{Text: "hi"}}
	p := NewCachedProvider(inner, store)

	req := &Request{Messages: []Message{{Role: "user", Content: "hello"}}, Temperature: 0}
	r1, _ := p.Complete(context.Background(), req)
	r2, _ := p.Complete(context.Background(), req)

	if inner.calls != 1 {
		t.Fatalf("expected single upstream call, got %d", inner.calls)
	}
	if r1.Text != r2.Text {
		t.Fatalf("expected identical cached response")
	}
}
