package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

func wordsDoc(id string, n int) models.Document {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return models.Document{ID: id, Text: strings.Join(words, " "), Category: models.CategoryWorkout}
}

func TestNewChunker_Validation(t *testing.T) {
	tests := []struct {
		name     string
		maxWords int
		overlap  int
		wantErr  bool
	}{
		{"valid", 500, 50, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.maxWords, tt.overlap)
			if tt.wantErr {
				assert.True(t, services.IsConfigurationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplit_ShortDocumentIsSingleChunk(t *testing.T) {
	chunker, err := NewChunker(100, 10)
	require.NoError(t, err)

	chunks := chunker.Split(wordsDoc("doc", 40))
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 40, chunks[0].End)
	assert.Equal(t, models.ChunkID("doc", 0), chunks[0].ID)
}

func TestSplit_OverlappingWindows(t *testing.T) {
	chunker, err := NewChunker(10, 3)
	require.NoError(t, err)

	doc := wordsDoc("doc", 25)
	chunks := chunker.Split(doc)
	require.Len(t, chunks, 4)

	// Consecutive chunks share exactly the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		cur := strings.Fields(chunks[i].Text)
		assert.Equal(t, prev[len(prev)-3:], cur[:3])
		assert.Equal(t, chunks[i-1].End-3, chunks[i].Start)
	}

	// Every word of the document is covered.
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 25, chunks[len(chunks)-1].End)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "doc", c.DocumentID)
		assert.Equal(t, models.CategoryWorkout, c.Category)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	chunker, err := NewChunker(7, 2)
	require.NoError(t, err)

	doc := wordsDoc("doc", 50)
	assert.Equal(t, chunker.Split(doc), chunker.Split(doc))
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	chunker, err := NewChunker(10, 2)
	require.NoError(t, err)

	assert.Empty(t, chunker.Split(models.Document{ID: "empty", Text: "  \n\t  "}))
}

func TestSplit_NormalizesInternalWhitespace(t *testing.T) {
	chunker, err := NewChunker(10, 0)
	require.NoError(t, err)

	doc := models.Document{ID: "doc", Text: "squat   bench\npress\t\tdeadlift"}
	chunks := chunker.Split(doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, "squat bench press deadlift", chunks[0].Text)
}
