// Package vectorindex provides an in-memory brute-force vector index over
// knowledge chunks, with cosine-similarity search, an atomically swappable
// holder, and a JSON snapshot format for persistence across restarts.
package vectorindex

import (
	"math"
	"sort"
	"sync"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

// Index stores chunk embeddings of a single fixed dimension. Vectors are
// L2-normalized at insert so search reduces to a dot product.
type Index struct {
	dimension int
	chunks    []models.Chunk
	vectors   [][]float64
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"index dimension must be positive", services.ErrInvalidChunkConfig).
			WithDetail("dimension", dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Dimension returns the vector dimension the index was built for.
func (idx *Index) Dimension() int { return idx.dimension }

// Size returns the number of indexed chunks.
func (idx *Index) Size() int { return len(idx.chunks) }

// Insert adds a chunk with its embedding. A vector of the wrong dimension is
// rejected and the index is left unchanged.
func (idx *Index) Insert(chunk models.Chunk, vector []float64) error {
	if len(vector) != idx.dimension {
		return services.NewDomainError(services.ErrorTypeDimensionMismatch,
			"embedding dimension does not match index", services.ErrDimensionMismatch).
			WithDetail("expected", idx.dimension).
			WithDetail("got", len(vector)).
			WithDetail("chunk_id", chunk.ID)
	}

	idx.chunks = append(idx.chunks, chunk)
	idx.vectors = append(idx.vectors, normalize(vector))
	return nil
}

// Search returns up to k chunks ranked by cosine similarity to the query
// vector, highest first. An empty index yields an empty result.
func (idx *Index) Search(query []float64, k int) ([]models.ScoredChunk, error) {
	if len(query) != idx.dimension {
		return nil, services.NewDomainError(services.ErrorTypeDimensionMismatch,
			"query dimension does not match index", services.ErrDimensionMismatch).
			WithDetail("expected", idx.dimension).
			WithDetail("got", len(query))
	}
	if k <= 0 || len(idx.chunks) == 0 {
		return []models.ScoredChunk{}, nil
	}

	q := normalize(query)
	scored := make([]models.ScoredChunk, len(idx.chunks))
	for i, vec := range idx.vectors {
		scored[i] = models.ScoredChunk{Chunk: idx.chunks[i], Score: dot(q, vec)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// normalize returns the L2-normalized copy of v. The zero vector is returned
// as-is so it scores zero against everything.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Holder publishes the active index and allows replacing it atomically, so
// reindexing never disturbs in-flight searches.
type Holder struct {
	mu    sync.RWMutex
	index *Index
}

// NewHolder creates a holder, optionally seeded with an initial index.
func NewHolder(initial *Index) *Holder {
	return &Holder{index: initial}
}

// Active returns the currently published index, or an IndexNotReady error
// when none has been installed yet.
func (h *Holder) Active() (*Index, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return nil, services.NewDomainError(services.ErrorTypeNotFound,
			"no knowledge index is loaded", services.ErrIndexNotReady)
	}
	return h.index, nil
}

// Swap atomically replaces the active index and returns the previous one.
func (h *Holder) Swap(next *Index) *Index {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.index
	h.index = next
	return prev
}
