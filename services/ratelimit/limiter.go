// Package ratelimit enforces per-service call budgets for the external API
// gateway. Each service gets a token bucket sized to its budget per window,
// so a burst may spend the whole budget and refill arrives continuously
// (a rolling-window reading of "budget per window").
package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/peakform/coachd/services"
)

// Policy selects what happens when a service's budget is exhausted.
type Policy string

const (
	// PolicyBlock waits for budget to free up, bounded by Config.MaxWait.
	PolicyBlock Policy = "block"
	// PolicyReject fails immediately with a rate-limit error.
	PolicyReject Policy = "reject"
)

// Config is the per-service rate budget.
type Config struct {
	Budget  int           // max calls per window
	Window  time.Duration // budget window
	Policy  Policy
	MaxWait time.Duration // wait ceiling for PolicyBlock
}

type budget struct {
	limiter *rate.Limiter
	config  Config
}

// Limiter tracks rate budgets for all external services. Budget state is
// shared by every in-flight pipeline calling the same service; the underlying
// token buckets make concurrent acquisition race-free.
type Limiter struct {
	mu      sync.RWMutex
	budgets map[string]*budget
	logger  *zap.Logger
}

// New creates a Limiter with no budgets configured. Unconfigured services
// are not limited.
func New(logger *zap.Logger) *Limiter {
	return &Limiter{
		budgets: make(map[string]*budget),
		logger:  logger,
	}
}

// Configure installs or replaces the budget for a service.
func (l *Limiter) Configure(service string, cfg Config) error {
	if cfg.Budget <= 0 || cfg.Window <= 0 {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			"rate budget and window must be positive", nil).
			WithDetail("service", service)
	}
	if cfg.Policy == PolicyBlock && cfg.MaxWait <= 0 {
		return services.NewDomainError(services.ErrorTypeConfiguration,
			"block policy requires a positive max wait", nil).
			WithDetail("service", service)
	}

	perSecond := float64(cfg.Budget) / cfg.Window.Seconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.budgets[service] = &budget{
		limiter: rate.NewLimiter(rate.Limit(perSecond), cfg.Budget),
		config:  cfg,
	}

	l.logger.Info("rate budget configured",
		zap.String("service", service),
		zap.Int("budget", cfg.Budget),
		zap.Duration("window", cfg.Window),
		zap.String("policy", string(cfg.Policy)))
	return nil
}

// Acquire spends one call from the service's budget, applying the configured
// policy when the budget is exhausted. Services without a configured budget
// are always allowed.
func (l *Limiter) Acquire(ctx context.Context, service string) error {
	l.mu.RLock()
	b, exists := l.budgets[service]
	l.mu.RUnlock()
	if !exists {
		return nil
	}

	switch b.config.Policy {
	case PolicyReject:
		res := b.limiter.Reserve()
		if !res.OK() {
			return services.NewDomainError(services.ErrorTypeRateLimit,
				"rate budget exhausted", nil).WithDetail("service", service)
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			l.logger.Warn("rate budget exhausted",
				zap.String("service", service),
				zap.Duration("retry_after", delay))
			return services.NewDomainError(services.ErrorTypeRateLimit,
				"rate budget exhausted", nil).
				WithDetail("service", service).
				WithDetail("retry_after", delay.String())
		}
		return nil

	default: // PolicyBlock
		waitCtx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
		defer cancel()
		if err := b.limiter.Wait(waitCtx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("rate budget wait ceiling exceeded",
				zap.String("service", service),
				zap.Duration("max_wait", b.config.MaxWait))
			return services.NewDomainError(services.ErrorTypeRateLimit,
				"rate budget wait ceiling exceeded", err).
				WithDetail("service", service)
		}
		return nil
	}
}

// Remaining reports the tokens currently available for a service, or -1 when
// the service has no budget configured. Used by the status endpoint.
func (l *Limiter) Remaining(service string) float64 {
	l.mu.RLock()
	b, exists := l.budgets[service]
	l.mu.RUnlock()
	if !exists {
		return -1
	}
	return b.limiter.Tokens()
}
