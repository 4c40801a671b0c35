// Package gateway wraps every outbound call to an external service (LLM
// generation, embeddings, recipe lookups) behind one pipeline: response
// cache, per-service rate budget, bounded retries with exponential backoff,
// and a locally synthesized fallback when the service stays down.
package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/coachd/services"
	"github.com/peakform/coachd/services/cache"
	"github.com/peakform/coachd/services/providers"
	"github.com/peakform/coachd/services/ratelimit"
)

// RetryPolicy is the single reusable retry configuration applied uniformly
// to every call for a service kind. Only transient failures are retried.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy returns the retry policy used when a kind has none
// configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffBase: 500 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

// backoff computes the exponential delay before the given retry attempt.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BackoffBase << attempt
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	return d
}

// FallbackFunc synthesizes a degraded payload for a request when the backing
// service is unavailable.
type FallbackFunc func(req providers.Request) interface{}

// KindConfig is the per-service-kind gateway configuration.
type KindConfig struct {
	// CacheTTL bounds how long genuine responses are cached; 0 disables
	// caching for the kind.
	CacheTTL time.Duration

	Retry RetryPolicy

	// Fallback, when set, turns exhausted retries into a degraded response.
	// Kinds without a fallback (embedding) propagate the failure instead.
	Fallback FallbackFunc
}

// Response is the result of a gateway call.
type Response struct {
	Payload   interface{}
	Kind      providers.Kind
	FromCache bool

	// Degraded marks a locally synthesized fallback so callers can surface
	// reduced-confidence messaging. Degraded responses are never cached.
	Degraded bool
}

// Service is the external API gateway.
type Service struct {
	registry *providers.Registry
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	configs  map[providers.Kind]KindConfig
	logger   *zap.Logger

	// sleep is swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates the gateway. Kind configurations are installed with Configure.
func New(registry *providers.Registry, respCache *cache.Cache, limiter *ratelimit.Limiter, logger *zap.Logger) *Service {
	return &Service{
		registry: registry,
		cache:    respCache,
		limiter:  limiter,
		configs:  make(map[providers.Kind]KindConfig),
		logger:   logger,
		sleep:    sleepContext,
	}
}

// Configure installs the gateway configuration for a service kind.
func (s *Service) Configure(kind providers.Kind, cfg KindConfig) {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	s.configs[kind] = cfg
}

// Call runs the request through the gateway pipeline. Cache hits bypass rate
// accounting entirely. Rate-limit and non-transient provider errors
// propagate; exhausted retries degrade to the kind's fallback when one is
// configured.
func (s *Service) Call(ctx context.Context, req providers.Request) (*Response, error) {
	kind := req.Kind()
	cfg, ok := s.configs[kind]
	if !ok {
		cfg = KindConfig{Retry: DefaultRetryPolicy()}
	}

	cacheKey := "gateway:" + string(kind) + ":" + req.Signature()
	if cfg.CacheTTL > 0 {
		if cached, hit := s.cache.Get(cacheKey); hit {
			s.logger.Debug("gateway cache hit",
				zap.String("kind", string(kind)),
				zap.String("signature", req.Signature()))
			return &Response{Payload: cached, Kind: kind, FromCache: true}, nil
		}
	}

	if err := s.limiter.Acquire(ctx, string(kind)); err != nil {
		return nil, err
	}

	provider, err := s.registry.Get(kind)
	if err != nil {
		return s.degradeOrFail(req, cfg, err)
	}

	payload, err := s.invokeWithRetry(ctx, provider, req, cfg.Retry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !providers.IsRetryable(err) && !isTransportError(err) {
			// Caller error (malformed request, 4xx). Never degraded, never cached.
			return nil, s.wrapProviderError(kind, err)
		}
		return s.degradeOrFail(req, cfg, err)
	}

	if cfg.CacheTTL > 0 {
		s.cache.Put(cacheKey, payload, cfg.CacheTTL)
	}
	return &Response{Payload: payload, Kind: kind}, nil
}

// invokeWithRetry performs up to MaxAttempts invocations, backing off
// exponentially between transient failures.
func (s *Service) invokeWithRetry(ctx context.Context, provider providers.Provider, req providers.Request, policy RetryPolicy) (interface{}, error) {
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, policy.backoff(attempt-1)); err != nil {
				return nil, err
			}
			s.logger.Debug("retrying external call",
				zap.String("provider", provider.Name()),
				zap.String("kind", string(req.Kind())),
				zap.Int("attempt", attempt+1))
		}

		payload, err := provider.Invoke(ctx, req)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if !providers.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

// degradeOrFail returns the kind's fallback as a degraded response, or the
// wrapped error when no fallback is configured.
func (s *Service) degradeOrFail(req providers.Request, cfg KindConfig, cause error) (*Response, error) {
	if cfg.Fallback == nil {
		return nil, s.wrapProviderError(req.Kind(), cause)
	}

	s.logger.Warn("external service unavailable, serving degraded response",
		zap.String("kind", string(req.Kind())),
		zap.Error(cause))

	// Deliberately not cached: a degraded answer must never masquerade as a
	// genuine API response on later calls.
	return &Response{
		Payload:  cfg.Fallback(req),
		Kind:     req.Kind(),
		Degraded: true,
	}, nil
}

func (s *Service) wrapProviderError(kind providers.Kind, err error) error {
	if kind == providers.KindEmbedding {
		return services.NewDomainError(services.ErrorTypeExternal,
			"embedding service unavailable", err)
	}
	return services.WrapExternal("external service call failed", err)
}

// isTransportError reports whether the error is something other than a
// structured provider rejection, e.g. a raw transport failure from a stub.
func isTransportError(err error) bool {
	_, ok := err.(*providers.ProviderError)
	return !ok
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
