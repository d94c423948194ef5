package cache

import (
	"context"
	"testing"
	"time"
)

func TestStoreGetPutRoundTrip(t *testing.T) {
	s := NewStore(StoreOptions{})
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "k1", []byte("hello"), time.Minute)
	v, ok := s.Get(ctx, "k1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if string(v) != "hello" {
		t.Fatalf("got %q, want %q", v, "hello")
	}
}

func TestStoreMissOnExpiry(t *testing.T) {
	s := NewStore(StoreOptions{})
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "k1", []byte("hello"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestStoreNonPositiveTTLSkipsWrite(t *testing.T) {
	s := NewStore(StoreOptions{})
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "k1", []byte("hello"), 0)
	if _, ok := s.Get(ctx, "k1"); ok {
		t.Fatalf("expected write with non-positive ttl to be skipped")
	}
}

func TestStoreClearByPrefix(t *testing.T) {
	s := NewStore(StoreOptions{})
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "vector_search:a", []byte("1"), time.Minute)
	s.Put(ctx, "vector_search:b", []byte("2"), time.Minute)
	s.Put(ctx, "exchange_rate:c", []byte("3"), time.Minute)

	removed := s.Clear("vector_search:")
	if removed != 2 {
		t.Fatalf("got %d removed, want 2", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("got %d remaining, want 1", s.Len())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	s := NewStore(StoreOptions{})
	defer s.Close()
	ctx := context.Background()

	PutJSON(ctx, s, "p1", payload{Name: "x"}, time.Minute)
	got, ok := GetJSON[payload](ctx, s, "p1")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got.Name != "x" {
		t.Fatalf("got %q, want %q", got.Name, "x")
	}
}

func TestCanonicalKeyStableAcrossArgOrder(t *testing.T) {
	a := CanonicalKey("investigation_result", map[string]string{"b": "2", "a": "1"})
	b := CanonicalKey("investigation_result", map[string]string{"a": "1", "b": "2"})
	if a != b {
		t.Fatalf("expected stable key regardless of map iteration order: %q != %q", a, b)
	}
}

func TestStoreDropsOnWriteTimeout(t *testing.T) {
	dropped := 0
	s := NewStore(StoreOptions{WriteTimeout: time.Nanosecond, OnDrop: func() { dropped++ }})
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, "k1", []byte("v"), time.Minute)
	if dropped > 1 {
		t.Fatalf("onDrop should fire at most once per Put, got %d", dropped)
	}
}
