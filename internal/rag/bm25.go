// Package rag implements the hybrid retrieval store: a sparse BM25 index
// over pre-chunked document text and a dense cosine-similarity fallback
// over pre-computed embeddings, combined behind a single search policy.
package rag

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ovokpus/investigatorai/internal/domain"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25Index is an in-memory, immutable-after-build sparse index.
type bm25Index struct {
	chunks    []domain.DocumentChunk
	postings  map[string][]posting // term -> sorted-by-chunk postings
	docLen    []int                // tokens per chunk, aligned with chunks
	avgDocLen float64
}

type posting struct {
	chunkIdx int
	freq     int
}

// newBM25Index tokenizes and indexes chunks. Chunks are kept in the order
// given; chunk index is used as the tie-break key (ascending) when scores
// are equal, so callers should keep chunk ordering stable (e.g. by
// ChunkID) before building.
func newBM25Index(chunks []domain.DocumentChunk) *bm25Index {
	idx := &bm25Index{
		chunks:   chunks,
		postings: make(map[string][]posting),
		docLen:   make([]int, len(chunks)),
	}

	totalLen := 0
	for i, c := range chunks {
		freqs := map[string]int{}
		toks := tokenize(c.Text)
		idx.docLen[i] = len(toks)
		totalLen += len(toks)
		for _, tok := range toks {
			freqs[tok]++
		}
		for term, freq := range freqs {
			idx.postings[term] = append(idx.postings[term], posting{chunkIdx: i, freq: freq})
		}
	}
	if len(chunks) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(chunks))
	}
	for term := range idx.postings {
		sort.Slice(idx.postings[term], func(a, b int) bool {
			return idx.postings[term][a].chunkIdx < idx.postings[term][b].chunkIdx
		})
	}
	return idx
}

// search scores every chunk containing at least one query term and
// returns the top k hits, ties broken by ascending chunk index (i.e.
// original chunk order, which callers establish by ChunkID before
// building the index).
func (idx *bm25Index) search(query string, k int) []domain.RetrievalHit {
	terms := tokenize(query)
	if len(terms) == 0 || len(idx.chunks) == 0 {
		return nil
	}

	n := float64(len(idx.chunks))
	scores := make(map[int]float64)
	seen := map[string]bool{}
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		postings := idx.postings[term]
		if len(postings) == 0 {
			continue
		}
		df := float64(len(postings))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for _, p := range postings {
			dl := float64(idx.docLen[p.chunkIdx])
			tf := float64(p.freq)
			denom := tf + bm25K1*(1-bm25B+bm25B*dl/maxAvg(idx.avgDocLen))
			scores[p.chunkIdx] += idf * (tf * (bm25K1 + 1) / denom)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	hits := make([]domain.RetrievalHit, 0, len(scores))
	for chunkIdx, score := range scores {
		hits = append(hits, domain.RetrievalHit{
			ChunkID: idx.chunks[chunkIdx].ChunkID,
			Score:   score,
			Method:  domain.RetrievalBM25,
			Chunk:   idx.chunks[chunkIdx],
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

func maxAvg(avg float64) float64 {
	if avg <= 0 {
		return 1
	}
	return avg
}

// tokenize case-folds and strips punctuation, collapsing single-letter
// acronyms separated by periods (e.g. "S.A.R.") into one token ("sar")
// before folding, so acronyms survive as a unit rather than shattering
// into single letters.
func tokenize(text string) []string {
	text = collapseAcronyms(text)
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, strings.ToLower(b.String()))
			b.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// collapseAcronyms rewrites sequences like "S.A.R." or "U.S." into "SAR"
// / "US" by dropping periods that sit between single letters.
func collapseAcronyms(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '.' && isAcronymBoundary(runes, i) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func isAcronymBoundary(runes []rune, i int) bool {
	prevLetter := i > 0 && unicode.IsLetter(runes[i-1])
	nextLetter := i+1 < len(runes) && unicode.IsLetter(runes[i+1])
	if !prevLetter || !nextLetter {
		return false
	}
	// Require the letter before the period to itself be a single-letter
	// run (preceded by a non-letter or start of string), so ordinary
	// sentence-ending abbreviations like "etc. Then" aren't affected.
	singleBefore := i < 2 || !unicode.IsLetter(runes[i-2])
	return singleBefore
}
