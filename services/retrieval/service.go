// Package retrieval answers semantic queries against the active knowledge
// index, with a TTL cache in front of the embedding and search work.
package retrieval

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/coachd/models"
	"github.com/peakform/coachd/services"
	"github.com/peakform/coachd/services/cache"
	"github.com/peakform/coachd/services/gateway"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/services/vectorindex"
)

// overFetchFactor widens the index search when a category filter applies, so
// filtering still leaves enough candidates to fill k.
const overFetchFactor = 4

// Service retrieves the chunks most relevant to a query.
type Service struct {
	gateway  *gateway.Service
	holder   *vectorindex.Holder
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// New creates the retrieval service. cacheTTL of 0 disables result caching.
func New(gw *gateway.Service, holder *vectorindex.Holder, resultCache *cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		gateway:  gw,
		holder:   holder,
		cache:    resultCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Retrieve returns up to k chunks ranked by similarity to the query,
// optionally restricted to one category (empty category means no filter).
// Cached results skip both the embedding call and the index search.
func (s *Service) Retrieve(ctx context.Context, query string, k int, category models.Category) (*models.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			"query must be non-empty and k positive", services.ErrInvalidQuery).
			WithDetail("k", k)
	}

	key := cacheKey(query, k, category)
	if s.cacheTTL > 0 {
		if cached, hit := s.cache.Get(key); hit {
			if result, ok := cached.(*models.RetrievalResult); ok {
				s.logger.Debug("retrieval cache hit", zap.String("query", query))
				return result, nil
			}
		}
	}

	idx, err := s.holder.Active()
	if err != nil {
		return nil, err
	}

	vector, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	fetch := k
	if category != "" {
		fetch = k * overFetchFactor
	}

	scored, err := idx.Search(vector, fetch)
	if err != nil {
		return nil, err
	}

	if category != "" {
		filtered := scored[:0]
		for _, sc := range scored {
			if sc.Chunk.Category == category {
				filtered = append(filtered, sc)
			}
		}
		scored = filtered
	}
	if len(scored) > k {
		scored = scored[:k]
	}

	result := &models.RetrievalResult{Query: query, Results: scored}
	if s.cacheTTL > 0 {
		s.cache.Put(key, result, s.cacheTTL)
	}
	return result, nil
}

func (s *Service) embed(ctx context.Context, query string) ([]float64, error) {
	resp, err := s.gateway.Call(ctx, providers.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, err
	}
	vector, ok := resp.Payload.([]float64)
	if !ok {
		return nil, services.WrapInternal("embedding provider returned unexpected payload", nil)
	}
	return vector, nil
}

// cacheKey hashes the normalized query and joins the search parameters, so
// the same question with different k or category caches separately.
func cacheKey(query string, k int, category models.Category) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("retrieval:%s|%d|%s", hex.EncodeToString(sum[:]), k, category)
}
