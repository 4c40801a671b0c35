package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
	"github.com/peakform/coachd/services/gateway"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/services/vectorindex"
)

// Service rebuilds the knowledge index from documents. A rebuild embeds every
// chunk, assembles a fresh index, and only then swaps it into the holder, so
// a failed rebuild never disturbs the active index.
type Service struct {
	chunker      *Chunker
	gateway      *gateway.Service
	holder       *vectorindex.Holder
	dimension    int
	snapshotPath string
	logger       *zap.Logger
}

// Report summarizes a completed reindex.
type Report struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Dimension int `json:"dimension"`
}

// New creates the ingestion service. snapshotPath may be empty to disable
// persistence.
func New(chunker *Chunker, gw *gateway.Service, holder *vectorindex.Holder, dimension int, snapshotPath string, logger *zap.Logger) *Service {
	return &Service{
		chunker:      chunker,
		gateway:      gw,
		holder:       holder,
		dimension:    dimension,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// LoadCorpus reads documents from category subdirectories under root
// (root/workout, root/nutrition). Only .txt files are picked up; anything
// else is skipped.
func LoadCorpus(root string) ([]models.Document, error) {
	var docs []models.Document

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeNotFound,
			"knowledge corpus directory not readable", err).WithDetail("path", root)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		category, ok := models.ParseCategory(entry.Name())
		if !ok {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, services.WrapInternal("failed to read corpus category directory", err)
		}

		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".txt") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, file.Name()))
			if err != nil {
				return nil, services.WrapInternal("failed to read corpus document", err)
			}
			name := strings.TrimSuffix(file.Name(), ".txt")
			docs = append(docs, models.Document{
				ID:       string(category) + "/" + name,
				Name:     name,
				Text:     string(data),
				Category: category,
			})
		}
	}
	return docs, nil
}

// Reindex chunks and embeds the documents, builds a fresh index, and
// publishes it atomically. Any embedding or dimension failure aborts the
// rebuild and leaves the previously active index in place.
func (s *Service) Reindex(ctx context.Context, docs []models.Document) (*Report, error) {
	if len(docs) == 0 {
		return nil, services.ErrNoDocuments
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.chunker.Split(doc)...)
	}
	if len(chunks) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			"documents contain no indexable text", services.ErrNoDocuments)
	}

	next, err := vectorindex.New(s.dimension)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		vector, err := s.embed(ctx, chunk.Text)
		if err != nil {
			s.logger.Error("reindex aborted, active index left untouched",
				zap.String("chunk_id", chunk.ID),
				zap.Error(err))
			return nil, err
		}
		if err := next.Insert(chunk, vector); err != nil {
			return nil, err
		}
	}

	s.holder.Swap(next)
	s.logger.Info("knowledge index published",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", next.Size()),
		zap.Int("dimension", s.dimension))

	if s.snapshotPath != "" {
		if err := vectorindex.Save(next, s.snapshotPath); err != nil {
			// The new index is already serving; persistence failure only
			// costs the next restart a rebuild.
			s.logger.Warn("failed to persist index snapshot", zap.Error(err))
		}
	}

	return &Report{Documents: len(docs), Chunks: next.Size(), Dimension: s.dimension}, nil
}

// RestoreSnapshot loads a previously saved index from disk and publishes it.
func (s *Service) RestoreSnapshot() error {
	if s.snapshotPath == "" {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			"no snapshot path configured", nil)
	}
	idx, err := vectorindex.Load(s.snapshotPath, s.dimension)
	if err != nil {
		return err
	}
	s.holder.Swap(idx)
	s.logger.Info("knowledge index restored from snapshot",
		zap.Int("chunks", idx.Size()),
		zap.String("path", s.snapshotPath))
	return nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := s.gateway.Call(ctx, providers.EmbeddingRequest{Text: text})
	if err != nil {
		return nil, err
	}
	vector, ok := resp.Payload.([]float64)
	if !ok {
		return nil, services.WrapInternal("embedding provider returned unexpected payload", nil)
	}
	return vector, nil
}
