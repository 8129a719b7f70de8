package rules

import (
	"context"
	"errors"
	"strings"
	"time"

	"locate-service/internal/cache"

	"go.uber.org/zap"
)

// CachedProvider caches rule lists per market. Only rules are cached;
// evaluation always runs on the wrapped provider.
type CachedProvider struct {
	next   Provider
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProvider wraps next with a rule cache
func NewCachedProvider(next Provider, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (p *CachedProvider) GetActiveLocateRules(ctx context.Context, market string) ([]WorkflowRule, error) {
	key := cache.PrefixRules + strings.ToUpper(market)

	var cached []WorkflowRule
	err := cache.GetJSON(ctx, p.cache, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.logger.Warn("Rule cache read failed, loading from provider",
			zap.String("market", market),
			zap.Error(err),
		)
	}

	rules, err := p.next.GetActiveLocateRules(ctx, market)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, p.cache, key, rules, p.ttl); err != nil {
		p.logger.Warn("Rule cache write failed", zap.String("market", market), zap.Error(err))
	}
	return rules, nil
}

func (p *CachedProvider) ProcessRules(ctx context.Context, rules []WorkflowRule, evalCtx map[string]interface{}) (map[string]interface{}, error) {
	return p.next.ProcessRules(ctx, rules, evalCtx)
}

// Invalidate drops every cached rule list
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	return p.cache.DeleteByPattern(ctx, cache.PrefixRules+"*")
}

var _ Provider = (*CachedProvider)(nil)
