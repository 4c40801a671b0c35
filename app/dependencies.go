package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/peakform/coachd/config"
	"github.com/peakform/coachd/services/cache"
	"github.com/peakform/coachd/services/coach"
	"github.com/peakform/coachd/services/gateway"
	"github.com/peakform/coachd/services/ingest"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/services/providers/gemini"
	"github.com/peakform/coachd/services/providers/spoonacular"
	"github.com/peakform/coachd/services/ratelimit"
	"github.com/peakform/coachd/services/retrieval"
	"github.com/peakform/coachd/services/vectorindex"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Knowledge pipeline
	Cache     *cache.Cache
	Limiter   *ratelimit.Limiter
	Registry  *providers.Registry
	Gateway   *gateway.Service
	Holder    *vectorindex.Holder
	Ingest    *ingest.Service
	Retrieval *retrieval.Service
	Coach     *coach.Service

	cacheStop chan struct{}
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initCache(cfg)

	if err := deps.initRateLimits(cfg); err != nil {
		return nil, fmt.Errorf("failed to configure rate limits: %w", err)
	}

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.initGateway(cfg)

	if err := deps.initKnowledge(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize knowledge pipeline: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initCache creates the shared response cache and starts its expiry sweeper.
func (d *Dependencies) initCache(cfg *config.Config) {
	d.Cache = cache.New(cfg.Cache.MaxEntries)
	d.cacheStop = make(chan struct{})
	// The worker loops until Close; it must not hold up construction.
	go d.Cache.StartCleanupWorker(cfg.Cache.CleanupInterval, d.cacheStop)
}

// initRateLimits installs the per-service rate budgets.
func (d *Dependencies) initRateLimits(cfg *config.Config) error {
	d.Limiter = ratelimit.New(d.Logger)

	for kind, rl := range map[providers.Kind]config.ServiceRateLimit{
		providers.KindGeneration: cfg.RateLimits.Generation,
		providers.KindEmbedding:  cfg.RateLimits.Embedding,
		providers.KindRecipes:    cfg.RateLimits.Recipes,
	} {
		policy := ratelimit.PolicyReject
		if rl.Policy == "block" {
			policy = ratelimit.PolicyBlock
		}
		if err := d.Limiter.Configure(string(kind), ratelimit.Config{
			Budget:  rl.Budget,
			Window:  rl.Window,
			Policy:  policy,
			MaxWait: rl.MaxWait,
		}); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

// initProviders registers the configured external providers. A missing API
// key is not fatal: the gateway serves fallbacks for that kind.
func (d *Dependencies) initProviders(cfg *config.Config) error {
	d.Registry = providers.NewRegistry()

	if cfg.Providers.Gemini.APIKey != "" {
		adapter, err := gemini.NewAdapter(gemini.Config{
			APIKey:         cfg.Providers.Gemini.APIKey,
			BaseURL:        cfg.Providers.Gemini.BaseURL,
			GenerateModel:  cfg.Providers.Gemini.GenerateModel,
			EmbeddingModel: cfg.Providers.Gemini.EmbeddingModel,
			Timeout:        cfg.Providers.Gemini.Timeout,
		})
		if err != nil {
			return err
		}
		if err := d.Registry.Register(providers.KindGeneration, adapter); err != nil {
			return err
		}
		if err := d.Registry.Register(providers.KindEmbedding, adapter); err != nil {
			return err
		}
		d.Logger.Info("gemini provider registered",
			zap.String("generate_model", cfg.Providers.Gemini.GenerateModel),
			zap.String("embedding_model", cfg.Providers.Gemini.EmbeddingModel))
	} else {
		d.Logger.Warn("GEMINI_API_KEY not set, generation and embedding run degraded")
	}

	if cfg.Providers.Spoonacular.APIKey != "" {
		adapter, err := spoonacular.NewAdapter(spoonacular.Config{
			APIKey:  cfg.Providers.Spoonacular.APIKey,
			BaseURL: cfg.Providers.Spoonacular.BaseURL,
			Timeout: cfg.Providers.Spoonacular.Timeout,
		})
		if err != nil {
			return err
		}
		if err := d.Registry.Register(providers.KindRecipes, adapter); err != nil {
			return err
		}
		d.Logger.Info("spoonacular provider registered")
	} else {
		d.Logger.Warn("SPOONACULAR_API_KEY not set, food lookups run degraded")
	}

	return nil
}

// initGateway wires the gateway pipeline per service kind. Generation and
// recipes get fallbacks; embedding failures must surface so callers know
// retrieval is down.
func (d *Dependencies) initGateway(cfg *config.Config) {
	d.Gateway = gateway.New(d.Registry, d.Cache, d.Limiter, d.Logger)

	retry := gateway.RetryPolicy{
		MaxAttempts: cfg.Gateway.RetryMaxAttempts,
		BackoffBase: cfg.Gateway.RetryBackoffBase,
		MaxBackoff:  cfg.Gateway.RetryMaxBackoff,
	}

	d.Gateway.Configure(providers.KindGeneration, gateway.KindConfig{
		CacheTTL: cfg.Gateway.GenerationCacheTTL,
		Retry:    retry,
		Fallback: gateway.GenerationFallback,
	})
	d.Gateway.Configure(providers.KindEmbedding, gateway.KindConfig{
		Retry: retry,
	})
	d.Gateway.Configure(providers.KindRecipes, gateway.KindConfig{
		CacheTTL: cfg.Gateway.RecipesCacheTTL,
		Retry:    retry,
		Fallback: gateway.RecipesFallback,
	})
}

// initKnowledge builds the ingestion, retrieval, and coaching services on
// top of the gateway.
func (d *Dependencies) initKnowledge(cfg *config.Config) error {
	chunker, err := ingest.NewChunker(cfg.Knowledge.ChunkMaxWords, cfg.Knowledge.ChunkOverlapWords)
	if err != nil {
		return err
	}

	d.Holder = vectorindex.NewHolder(nil)
	d.Ingest = ingest.New(chunker, d.Gateway, d.Holder,
		cfg.Knowledge.EmbeddingDimension, cfg.Knowledge.SnapshotPath, d.Logger)
	d.Retrieval = retrieval.New(d.Gateway, d.Holder, d.Cache,
		cfg.Knowledge.RetrievalCacheTTL, d.Logger)
	d.Coach = coach.New(d.Gateway, d.Retrieval, cfg.Knowledge.TopK, d.Logger)
	return nil
}

// BootstrapIndex publishes an initial knowledge index: a saved snapshot when
// one exists, otherwise a fresh build from the corpus directory. Failure is
// not fatal; the server starts and answers degraded until an ingest succeeds.
func (d *Dependencies) BootstrapIndex(ctx context.Context) {
	err := d.Ingest.RestoreSnapshot()
	if err == nil {
		return
	}
	d.Logger.Info("no usable index snapshot, building from corpus", zap.Error(err))

	docs, err := ingest.LoadCorpus(d.Config.Knowledge.CorpusDir)
	if err != nil {
		d.Logger.Warn("knowledge corpus unavailable, retrieval starts empty", zap.Error(err))
		return
	}
	if _, err := d.Ingest.Reindex(ctx, docs); err != nil {
		d.Logger.Warn("initial index build failed, retrieval starts empty", zap.Error(err))
	}
}

// Close releases background resources.
func (d *Dependencies) Close() {
	if d.cacheStop != nil {
		close(d.cacheStop)
		d.cacheStop = nil
	}
}
