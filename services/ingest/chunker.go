// Package ingest turns knowledge documents into embedded, searchable index
// chunks and publishes rebuilt indexes atomically.
package ingest

import (
	"strings"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

// Chunker splits document text into overlapping word windows. Overlap keeps
// sentences that straddle a boundary retrievable from both sides.
type Chunker struct {
	maxWords int
	overlap  int
}

// NewChunker validates the window configuration. Overlap must be smaller
// than the window or the walk would never advance.
func NewChunker(maxWords, overlap int) (*Chunker, error) {
	if maxWords <= 0 {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"chunk size must be positive", services.ErrInvalidChunkConfig).
			WithDetail("max_words", maxWords)
	}
	if overlap < 0 || overlap >= maxWords {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"chunk overlap must be non-negative and smaller than chunk size",
			services.ErrInvalidChunkConfig).
			WithDetail("max_words", maxWords).
			WithDetail("overlap", overlap)
	}
	return &Chunker{maxWords: maxWords, overlap: overlap}, nil
}

// Split cuts the document into chunks of at most maxWords words, with
// consecutive chunks sharing exactly overlap words. Splitting is
// deterministic; whitespace-only documents yield no chunks. Start and End are
// word offsets into the document.
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	words := strings.Fields(doc.Text)
	if len(words) == 0 {
		return nil
	}

	step := c.maxWords - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(words); start += step {
		end := start + c.maxWords
		if end > len(words) {
			end = len(words)
		}

		idx := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:         models.ChunkID(doc.ID, idx),
			DocumentID: doc.ID,
			Index:      idx,
			Start:      start,
			End:        end,
			Text:       strings.Join(words[start:end], " "),
			Category:   doc.Category,
		})

		if end == len(words) {
			break
		}
	}
	return chunks
}
