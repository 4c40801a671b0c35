package vectorindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

func chunk(id string, category models.Category) models.Chunk {
	return models.Chunk{ID: id, DocumentID: "doc", Text: "text for " + id, Category: category}
}

func TestNew_RejectsNonPositiveDimension(t *testing.T) {
	_, err := New(0)
	assert.True(t, services.IsConfigurationError(err))

	_, err = New(-3)
	assert.True(t, services.IsConfigurationError(err))
}

func TestInsert_DimensionMismatchLeavesIndexUnchanged(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	require.NoError(t, idx.Insert(chunk("a:0", models.CategoryWorkout), []float64{1, 0, 0}))

	err = idx.Insert(chunk("a:1", models.CategoryWorkout), []float64{1, 0})
	assert.True(t, services.IsDimensionMismatchError(err))
	assert.Equal(t, 1, idx.Size())
}

func TestSearch_RanksByCosineSimilarityDescending(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	// Vectors at increasing angles from the query direction.
	require.NoError(t, idx.Insert(chunk("far", models.CategoryNutrition), []float64{0, 0, 1}))
	require.NoError(t, idx.Insert(chunk("close", models.CategoryWorkout), []float64{1, 0.1, 0}))
	require.NoError(t, idx.Insert(chunk("exact", models.CategoryWorkout), []float64{2, 0, 0}))

	results, err := idx.Search([]float64{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Chunk.ID)
	assert.Equal(t, "close", results[1].Chunk.ID)
	assert.Equal(t, "far", results[2].Chunk.ID)

	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

func TestSearch_EmptyIndexAndKClamping(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	results, err := idx.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, idx.Insert(chunk("only", models.CategoryWorkout), []float64{0, 1}))

	results, err = idx.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	_, err = idx.Search([]float64{1, 0}, 1)
	assert.True(t, services.IsDimensionMismatchError(err))
}

func TestHolder_SwapAndNotReady(t *testing.T) {
	holder := NewHolder(nil)

	_, err := holder.Active()
	assert.ErrorIs(t, err, services.ErrIndexNotReady)

	first, err := New(2)
	require.NoError(t, err)
	assert.Nil(t, holder.Swap(first))

	active, err := holder.Active()
	require.NoError(t, err)
	assert.Same(t, first, active)

	second, err := New(2)
	require.NoError(t, err)
	assert.Same(t, first, holder.Swap(second))

	active, err = holder.Active()
	require.NoError(t, err)
	assert.Same(t, second, active)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(chunk("a:0", models.CategoryWorkout), []float64{1, 2, 3}))
	require.NoError(t, idx.Insert(chunk("a:1", models.CategoryNutrition), []float64{0, 1, 0}))

	path := filepath.Join(t.TempDir(), "knowledge", "index.json")
	require.NoError(t, Save(idx, path))

	loaded, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Size())
	assert.Equal(t, 3, loaded.Dimension())

	// Ranking is preserved across the round trip.
	orig, err := idx.Search([]float64{0, 1, 0}, 2)
	require.NoError(t, err)
	restored, err := loaded.Search([]float64{0, 1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, orig, restored)
}

func TestSnapshot_LoadRejectsDimensionSkew(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Insert(chunk("a:0", models.CategoryWorkout), []float64{1, 0, 0}))

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, Save(idx, path))

	_, err = Load(path, 768)
	assert.True(t, services.IsDimensionMismatchError(err))
}

func TestSnapshot_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), 3)
	assert.True(t, services.IsNotFoundError(err))
}
