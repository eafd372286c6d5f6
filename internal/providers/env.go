package providers

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/systmms/secretchain/internal/cache"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// DefaultCacheTTL is the cache lifetime used when a config leaves it unset.
const DefaultCacheTTL = 300 * time.Second

// EnvConfig configures an EnvProvider.
type EnvConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxSize int

	Logger *logging.Logger

	// Now, LookupEnv and Environ default to time.Now, os.LookupEnv and
	// os.Environ.
	Now       func() time.Time
	LookupEnv func(key string) (string, bool)
	Environ   func() []string
}

// DefaultEnvConfig returns caching enabled with a five minute TTL.
func DefaultEnvConfig() EnvConfig {
	return EnvConfig{
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
	}
}

// EnvProvider resolves secrets from the process environment.
type EnvProvider struct {
	config EnvConfig
	cache  *cache.TTL[*provider.SecretValue]
	logger *logging.Logger
}

// NewEnvProvider creates an environment provider.
func NewEnvProvider(config EnvConfig) *EnvProvider {
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.LookupEnv == nil {
		config.LookupEnv = os.LookupEnv
	}
	if config.Environ == nil {
		config.Environ = os.Environ
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	return &EnvProvider{
		config: config,
		cache: cache.New[*provider.SecretValue](cache.Config{
			Enabled: config.CacheEnabled,
			TTL:     config.CacheTTL,
			MaxSize: config.CacheMaxSize,
			Now:     config.Now,
		}),
		logger: config.Logger.With("provider", "env"),
	}
}

// GetSecret reads key from the environment, serving a live cache entry
// first unless opts.BypassCache is set.
func (p *EnvProvider) GetSecret(ctx context.Context, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
	ctx, cancel := provider.WithTimeout(ctx, opts)
	defer cancel()

	if err := provider.ContextError(ctx, p.Type(), key); err != nil {
		recordLookupError("env", err)
		return nil, err
	}

	if opts.VersionID != "" {
		p.logger.Debug("Ignoring version %q for %s: environment variables are unversioned", opts.VersionID, key)
	}

	if !opts.BypassCache {
		if cached, ok := p.cache.Get(key); ok {
			recordCacheHit("env")
			return cached, nil
		}
	}
	recordCacheMiss("env")

	value, ok := p.config.LookupEnv(key)
	if !ok {
		err := provider.NewError(provider.CodeNotFound, p.Type(), nil,
			"Secret '%s' not found in environment variables", key)
		recordLookupError("env", err)
		return nil, err
	}

	secret := &provider.SecretValue{
		Value: value,
		Metadata: provider.SecretMetadata{
			CreatedAt: p.config.Now(),
		},
	}
	p.cache.Set(key, secret, "")

	return secret, nil
}

// GetSecrets resolves keys with the discard-on-any-failure policy.
func (p *EnvProvider) GetSecrets(ctx context.Context, keys []string) (map[string]*provider.SecretValue, error) {
	return provider.CollectSecrets(ctx, p.Type(), keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
		return p.GetSecret(ctx, key, provider.GetOptions{})
	})
}

// HealthCheck always succeeds; the environment table is always available.
func (p *EnvProvider) HealthCheck(ctx context.Context) bool {
	return true
}

// Type returns TypeEnvVariables.
func (p *EnvProvider) Type() provider.Type {
	return provider.TypeEnvVariables
}

// InvalidateCache removes key from the cache.
func (p *EnvProvider) InvalidateCache(key string) {
	p.cache.Delete(key)
}

// ClearCache empties the cache.
func (p *EnvProvider) ClearCache() {
	p.cache.Clear()
}

// Cached reports whether key has a live cache entry.
func (p *EnvProvider) Cached(key string) bool {
	return p.cache.Has(key)
}

// AvailableKeys lists environment variable names that look like
// configuration: names containing an underscore or entirely upper case.
// It is meant for debugging and never exposes values.
func (p *EnvProvider) AvailableKeys() []string {
	var keys []string
	for _, kv := range p.config.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if name == "" {
			continue
		}
		if strings.Contains(name, "_") || strings.ToUpper(name) == name {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

// HasSecret reports whether key is set without touching the cache.
func (p *EnvProvider) HasSecret(key string) bool {
	_, ok := p.config.LookupEnv(key)
	return ok
}
