package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/ovokpus/investigatorai/internal/domain"
)

// Method selects which half of the hybrid index serves a Search call.
type Method = domain.RetrievalMethod

const (
	MethodAuto  = domain.RetrievalAuto
	MethodBM25  = domain.RetrievalBM25
	MethodDense = domain.RetrievalDense
)

// Store is the immutable-after-build hybrid retrieval index: BM25 is tried
// first, and the dense cosine index is consulted only as a fallback when
// BM25 returns zero hits (method=auto), or when the caller asks for dense
// explicitly. Grounded in interface shape on the teacher's
// internal/rag/store.DocumentStore (Search method signature), generalized
// here from pgvector-only to BM25-primary/dense-fallback.
type Store struct {
	bm25     *bm25Index
	dense    *denseIndex
	embedder QueryEmbedder
}

// NewStore builds an immutable index over chunks. Construction is the only
// way chunks enter the store; there is no later Add/Update/Delete, matching
// the "index must be immutable after build" resource policy.
func NewStore(chunks []domain.DocumentChunk, embedder QueryEmbedder) *Store {
	sorted := make([]domain.DocumentChunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ChunkID < sorted[b].ChunkID })

	return &Store{
		bm25:     newBM25Index(sorted),
		dense:    newDenseIndex(sorted),
		embedder: embedder,
	}
}

// Search executes the hybrid retrieval policy described in SPEC_FULL.md
// §5.2: for method=auto, BM25 runs first and its hits are returned as-is
// unless it found nothing, in which case the dense index is consulted; for
// method=bm25 or method=dense, only that index runs. A BM25 failure never
// occurs (it is pure in-memory computation); a dense failure (embedder
// error) degrades to empty hits plus a returned error the caller may trace
// but need not treat as fatal to the investigation.
func (s *Store) Search(ctx context.Context, query string, k int, method Method) ([]domain.RetrievalHit, error) {
	switch method {
	case MethodBM25:
		return s.bm25.search(query, k), nil
	case MethodDense:
		return s.searchDense(ctx, query, k)
	case MethodAuto, "":
		hits := s.bm25.search(query, k)
		if len(hits) > 0 {
			return hits, nil
		}
		return s.searchDense(ctx, query, k)
	default:
		return nil, fmt.Errorf("rag: unknown retrieval method %q", method)
	}
}

func (s *Store) searchDense(ctx context.Context, query string, k int) ([]domain.RetrievalHit, error) {
	if s.embedder == nil {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	return s.dense.search(vec, k), nil
}

// Len reports how many chunks the store was built with.
func (s *Store) Len() int {
	return len(s.bm25.chunks)
}
