package providers

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/systmms/secretchain/internal/cache"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// Cache source tags recorded by the hybrid provider.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// HybridConfig configures a HybridProvider.
type HybridConfig struct {
	// Primary is required.
	Primary provider.Provider
	// Fallback is optional.
	Fallback provider.Provider

	// StrictMode disables the fallback: primary failures propagate as-is.
	StrictMode bool

	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxSize int

	Logger *logging.Logger
	Now    func() time.Time
}

// CacheStats counts the hybrid's own cache entries by source.
type CacheStats struct {
	Size     int             `json:"size"`
	BySource SourceBreakdown `json:"by_source"`
}

// SourceBreakdown splits cache entries by the child that resolved them.
type SourceBreakdown struct {
	Primary  int `json:"primary"`
	Fallback int `json:"fallback"`
}

// ProviderSummary is a debugging snapshot of a hybrid provider.
type ProviderSummary struct {
	Primary    provider.Type `json:"primary"`
	Fallback   provider.Type `json:"fallback,omitempty"`
	StrictMode bool          `json:"strict_mode"`
	CacheSize  int           `json:"cache_size"`
}

// HybridProvider resolves secrets from a primary provider, falling back to
// a second provider when the primary fails and strict mode is off.
type HybridProvider struct {
	primary    provider.Provider
	fallback   provider.Provider
	strictMode bool
	cache      *cache.TTL[*provider.SecretValue]
	logger     *logging.Logger
}

// NewHybridProvider creates a hybrid provider. Primary must be set.
func NewHybridProvider(config HybridConfig) (*HybridProvider, error) {
	if config.Primary == nil {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeHybrid, nil,
			"Hybrid provider requires a primary provider")
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	return &HybridProvider{
		primary:    config.Primary,
		fallback:   config.Fallback,
		strictMode: config.StrictMode,
		cache: cache.New[*provider.SecretValue](cache.Config{
			Enabled: config.CacheEnabled,
			TTL:     config.CacheTTL,
			MaxSize: config.CacheMaxSize,
			Now:     config.Now,
		}),
		logger: config.Logger.With("provider", "hybrid"),
	}, nil
}

// GetSecret resolves key through the hybrid's own cache, then the primary,
// then the fallback.
func (p *HybridProvider) GetSecret(ctx context.Context, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
	ctx, cancel := provider.WithTimeout(ctx, opts)
	defer cancel()

	if err := provider.ContextError(ctx, p.Type(), key); err != nil {
		recordLookupError("hybrid", err)
		return nil, err
	}

	if !opts.BypassCache {
		if cached, ok := p.cache.Get(key); ok {
			recordCacheHit("hybrid")
			return cached, nil
		}
	}
	recordCacheMiss("hybrid")

	secret, primaryErr := p.primary.GetSecret(ctx, key, opts)
	if primaryErr == nil {
		p.cache.Set(key, secret, SourcePrimary)
		return secret, nil
	}

	if p.strictMode || p.fallback == nil {
		recordLookupError("hybrid", primaryErr)
		return nil, primaryErr
	}

	// A caller that gave up is not a missing secret.
	if err := provider.ContextError(ctx, p.Type(), key); err != nil {
		recordLookupError("hybrid", err)
		return nil, err
	}

	p.logger.Debug("Primary provider failed for %s, trying fallback: %v", key, primaryErr)

	secret, err := p.fallback.GetSecret(ctx, key, opts)
	if err != nil {
		p.logger.Debug("Fallback provider failed for %s: %v", key, err)
		wrapped := provider.NewError(provider.CodeNotFound, p.Type(), primaryErr,
			"Secret '%s' not found in primary or fallback providers. Primary error: %s", key, primaryErr.Error())
		recordLookupError("hybrid", wrapped)
		return nil, wrapped
	}

	recordFallbackResolution()
	p.cache.Set(key, secret, SourceFallback)
	return secret, nil
}

// GetSecrets resolves each key through GetSecret, so fallback and caching
// apply per key, and fails as a whole if any key fails.
func (p *HybridProvider) GetSecrets(ctx context.Context, keys []string) (map[string]*provider.SecretValue, error) {
	return provider.CollectSecrets(ctx, p.Type(), keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
		return p.GetSecret(ctx, key, provider.GetOptions{})
	})
}

// HealthCheck mirrors the primary in strict mode. Otherwise an unhealthy
// primary is covered by a healthy fallback.
func (p *HybridProvider) HealthCheck(ctx context.Context) bool {
	primaryHealthy := p.primary.HealthCheck(ctx)
	if p.strictMode || primaryHealthy {
		return primaryHealthy
	}
	if p.fallback == nil {
		return false
	}
	return p.fallback.HealthCheck(ctx)
}

// Type returns TypeHybrid.
func (p *HybridProvider) Type() provider.Type {
	return provider.TypeHybrid
}

// InvalidateCache removes key from this cache and from both children.
func (p *HybridProvider) InvalidateCache(key string) {
	p.cache.Delete(key)
	p.primary.InvalidateCache(key)
	if p.fallback != nil {
		p.fallback.InvalidateCache(key)
	}
}

// ClearCache empties this cache and both children's caches.
func (p *HybridProvider) ClearCache() {
	p.cache.Clear()
	p.primary.ClearCache()
	if p.fallback != nil {
		p.fallback.ClearCache()
	}
}

// Cached reports whether key has a live entry in the hybrid's own cache.
func (p *HybridProvider) Cached(key string) bool {
	return p.cache.Has(key)
}

// CachedSource returns the source tag of the live cache entry for key.
func (p *HybridProvider) CachedSource(key string) (string, bool) {
	entry, ok := p.cache.Entry(key)
	if !ok {
		return "", false
	}
	return entry.Source, true
}

// CacheStats reports the hybrid's cache size broken down by source.
func (p *HybridProvider) CacheStats() CacheStats {
	counts := p.cache.CountBySource()
	return CacheStats{
		Size: p.cache.Len(),
		BySource: SourceBreakdown{
			Primary:  counts[SourcePrimary],
			Fallback: counts[SourceFallback],
		},
	}
}

// ProviderSummary reports how the hybrid is composed.
func (p *HybridProvider) ProviderSummary() ProviderSummary {
	summary := ProviderSummary{
		Primary:    p.primary.Type(),
		StrictMode: p.strictMode,
		CacheSize:  p.cache.Len(),
	}
	if p.fallback != nil {
		summary.Fallback = p.fallback.Type()
	}
	return summary
}

// Primary returns the primary provider.
func (p *HybridProvider) Primary() provider.Provider {
	return p.primary
}

// Fallback returns the fallback provider, or nil.
func (p *HybridProvider) Fallback() provider.Provider {
	return p.fallback
}

// StrictMode reports whether the fallback is disabled.
func (p *HybridProvider) StrictMode() bool {
	return p.strictMode
}

// Reload reloads every child that supports it.
func (p *HybridProvider) Reload(ctx context.Context) error {
	var errs []error
	for _, child := range p.children() {
		if r, ok := child.(provider.Reloader); ok {
			if err := r.Reload(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	p.cache.Clear()
	return errors.Join(errs...)
}

// Dispose disposes every child that holds resources.
func (p *HybridProvider) Dispose() error {
	var errs []error
	for _, child := range p.children() {
		if d, ok := child.(provider.Disposer); ok {
			if err := d.Dispose(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// AvailableKeys returns the union of the children's key names.
func (p *HybridProvider) AvailableKeys() []string {
	seen := make(map[string]struct{})
	for _, child := range p.children() {
		if l, ok := child.(provider.KeyLister); ok {
			for _, k := range l.AvailableKeys() {
				seen[k] = struct{}{}
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasSecret reports whether any child has key.
func (p *HybridProvider) HasSecret(key string) bool {
	for _, child := range p.children() {
		if l, ok := child.(provider.KeyLister); ok && l.HasSecret(key) {
			return true
		}
	}
	return false
}

func (p *HybridProvider) children() []provider.Provider {
	if p.fallback == nil {
		return []provider.Provider{p.primary}
	}
	return []provider.Provider{p.primary, p.fallback}
}
