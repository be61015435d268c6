package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/poiesic/seeker/core"
)

// VectorMatch pairs a document id with its cosine similarity to a query.
type VectorMatch struct {
	ID    string
	Score float64
}

// Vectors maps document ids to fixed-length embedding vectors and ranks them
// by cosine similarity with a brute-force scan. That is a deliberate scaling
// limit: beyond tens of thousands of vectors an approximate nearest-neighbor
// structure should replace it.
type Vectors struct {
	mu      sync.RWMutex
	dim     int // fixed at first insert, 0 until then
	vectors map[string][]float32
	order   []string // insertion order, for stable tie-breaking
}

// NewVectors creates an empty vector index. Dimensionality is fixed by the
// first Upsert and immutable for the life of the index.
func NewVectors() *Vectors {
	return &Vectors{vectors: make(map[string][]float32)}
}

// Upsert stores the vector for id. A vector whose length differs from the
// established dimensionality fails with core.ErrDimensionMismatch.
func (v *Vectors) Upsert(id string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", core.ErrDimensionMismatch)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dim == 0 {
		v.dim = len(vec)
	} else if len(vec) != v.dim {
		return fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vec), v.dim)
	}

	if _, exists := v.vectors[id]; !exists {
		v.order = append(v.order, id)
	}
	v.vectors[id] = append([]float32(nil), vec...)
	return nil
}

// Remove deletes the vector for id. Removing an absent id is a no-op.
func (v *Vectors) Remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.vectors[id]; !ok {
		return
	}
	delete(v.vectors, id)
	for i, existing := range v.order {
		if existing == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// TopK scans every stored vector and returns the k most similar to query,
// highest first. Ties keep insertion order (stable sort). A zero-norm vector
// on either side scores 0 rather than erroring.
func (v *Vectors) TopK(query []float32, k int) []VectorMatch {
	if k <= 0 {
		return nil
	}

	v.mu.RLock()
	matches := make([]VectorMatch, 0, len(v.order))
	for _, id := range v.order {
		matches = append(matches, VectorMatch{
			ID:    id,
			Score: CosineSimilarity(query, v.vectors[id]),
		})
	}
	v.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Len returns the number of stored vectors.
func (v *Vectors) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||). Mismatched lengths
// compare over the shorter prefix; a zero norm yields 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, x := range a {
		normA += float64(x) * float64(x)
	}
	for _, x := range b {
		normB += float64(x) * float64(x)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
