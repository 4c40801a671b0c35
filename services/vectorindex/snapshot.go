package vectorindex

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
)

// snapshot is the on-disk JSON form of an index. The dimension is recorded so
// a snapshot built against a different embedding model is rejected on load.
type snapshot struct {
	Dimension int            `json:"dimension"`
	Chunks    []models.Chunk `json:"chunks"`
	Vectors   [][]float64    `json:"vectors"`
}

// Save writes the index to path as a JSON snapshot, creating parent
// directories as needed. The write goes through a temp file and rename so a
// crash never leaves a truncated snapshot behind.
func Save(idx *Index, path string) error {
	snap := snapshot{
		Dimension: idx.dimension,
		Chunks:    idx.chunks,
		Vectors:   idx.vectors,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return services.WrapInternal("failed to encode index snapshot", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.WrapInternal("failed to create snapshot directory", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.WrapInternal("failed to write index snapshot", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return services.WrapInternal("failed to publish index snapshot", err)
	}
	return nil
}

// Load reads a JSON snapshot from path and rebuilds the index. A snapshot
// whose dimension differs from expectedDimension is rejected.
func Load(path string, expectedDimension int) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.NewDomainError(services.ErrorTypeNotFound,
				"index snapshot not found", err).WithDetail("path", path)
		}
		return nil, services.WrapInternal("failed to read index snapshot", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, services.WrapInternal("failed to decode index snapshot", err)
	}

	if snap.Dimension != expectedDimension {
		return nil, services.NewDomainError(services.ErrorTypeDimensionMismatch,
			"snapshot dimension does not match configured embedding dimension",
			services.ErrDimensionMismatch).
			WithDetail("expected", expectedDimension).
			WithDetail("got", snap.Dimension).
			WithDetail("path", path)
	}
	if len(snap.Chunks) != len(snap.Vectors) {
		return nil, services.WrapInternal("index snapshot is corrupt", nil)
	}

	idx, err := New(snap.Dimension)
	if err != nil {
		return nil, err
	}
	for i, vec := range snap.Vectors {
		if len(vec) != snap.Dimension {
			return nil, services.NewDomainError(services.ErrorTypeDimensionMismatch,
				"snapshot vector has wrong dimension", services.ErrDimensionMismatch).
				WithDetail("chunk_id", snap.Chunks[i].ID)
		}
	}
	idx.chunks = snap.Chunks
	idx.vectors = snap.Vectors
	return idx, nil
}
