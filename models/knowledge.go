package models

import (
	"strconv"
	"strings"
)

// Category tags a document (and the chunks cut from it) with the corpus
// partition it belongs to.
type Category string

const (
	CategoryWorkout   Category = "workout"
	CategoryNutrition Category = "nutrition"
)

// ParseCategory maps a raw tag (e.g. a corpus subdirectory name) to a Category.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryWorkout:
		return CategoryWorkout, true
	case CategoryNutrition:
		return CategoryNutrition, true
	}
	return "", false
}

// Document is a named source text from the coaching reference corpus.
// Documents are immutable once ingested and replaced wholesale on re-ingestion.
type Document struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Chunk is a contiguous slice of a document's text used as a retrieval unit.
// Chunks are created during ingestion and never mutated; a re-ingestion run
// destroys and regenerates them.
type Chunk struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Index      int      `json:"index"`
	Start      int      `json:"start"` // word offset into the document
	End        int      `json:"end"`   // exclusive word offset
	Text       string   `json:"text"`
	Category   Category `json:"category"` // inherited from the parent document
}

// ChunkID builds the deterministic id of the i-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return documentID + ":" + strconv.Itoa(index)
}

// ScoredChunk pairs a chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is an ordered sequence of scored chunks, highest similarity
// first, produced per query and never persisted.
type RetrievalResult struct {
	Query   string        `json:"query"`
	Results []ScoredChunk `json:"results"`
}

// ContextBlock joins the retrieved chunk texts into a single block suitable
// for injection into a generation prompt.
func (r RetrievalResult) ContextBlock() string {
	if len(r.Results) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Results))
	for _, sc := range r.Results {
		parts = append(parts, "- "+strings.TrimSpace(sc.Chunk.Text))
	}
	return strings.Join(parts, "\n")
}
