package rag

import (
	"context"
	"math"
	"sort"

	"github.com/ovokpus/investigatorai/internal/domain"
)

// EmbeddingDimension is the fixed vector width every chunk and query
// embedding must share.
const EmbeddingDimension = 3072

// QueryEmbedder embeds a search query into the same vector space the
// index's chunks were embedded in. Document embedding happens upstream of
// this package (ingestion is out of scope); only queries are embedded
// here, at search time.
//
// Grounded on the teacher's internal/memory/embeddings.Provider interface,
// narrowed to the single method this store needs.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type denseIndex struct {
	chunks []domain.DocumentChunk
}

func newDenseIndex(chunks []domain.DocumentChunk) *denseIndex {
	return &denseIndex{chunks: chunks}
}

// search scores every chunk that carries an embedding of the expected
// dimension by cosine similarity against queryVec, returning the top k,
// ties broken by ascending chunk id.
func (idx *denseIndex) search(queryVec []float32, k int) []domain.RetrievalHit {
	if len(queryVec) == 0 {
		return nil
	}
	hits := make([]domain.RetrievalHit, 0, len(idx.chunks))
	for _, c := range idx.chunks {
		if len(c.Embedding) != len(queryVec) {
			continue
		}
		sim := cosineSimilarity(queryVec, c.Embedding)
		hits = append(hits, domain.RetrievalHit{
			ChunkID: c.ChunkID,
			Score:   sim,
			Method:  domain.RetrievalDense,
			Chunk:   c,
		})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].Chunk.ChunkID < hits[b].Chunk.ChunkID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
