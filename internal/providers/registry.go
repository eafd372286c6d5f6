package providers

import (
	"context"
	"sort"
	"strings"

	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// Registry manages provider creation and registration
type Registry struct {
	factories map[string]ProviderFactory
	logger    *logging.Logger
}

// ProviderFactory creates a provider instance from configuration. Factories
// for composite providers use the registry to build their children.
type ProviderFactory func(cfg config.ProviderConfig, r *Registry) (provider.Provider, error)

// NewRegistry creates a new provider registry with built-in providers
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}

	registry := &Registry{
		factories: make(map[string]ProviderFactory),
		logger:    logger,
	}

	registry.RegisterFactory(config.TypeEnv, NewEnvProviderFactory)
	registry.RegisterFactory(config.TypeFile, NewFileProviderFactory)
	registry.RegisterFactory(config.TypeHybrid, NewHybridProviderFactory)
	registry.RegisterFactory(config.TypeAWS, NewAWSSecretsManagerProviderFactory)

	return registry
}

// RegisterFactory registers a provider factory for a given type
func (r *Registry) RegisterFactory(providerType string, factory ProviderFactory) {
	r.factories[providerType] = factory
}

// CreateProvider creates a provider tree from configuration
func (r *Registry) CreateProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	factory, exists := r.factories[cfg.Type]
	if !exists {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeHybrid, nil,
			"unknown provider type %q (supported: %s)", cfg.Type, strings.Join(r.GetSupportedTypes(), ", "))
	}

	return factory(cfg, r)
}

// Logger returns the logger handed to created providers.
func (r *Registry) Logger() *logging.Logger {
	return r.logger
}

// GetSupportedTypes returns the registered provider types, sorted
func (r *Registry) GetSupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for providerType := range r.factories {
		types = append(types, providerType)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks if a provider type is supported
func (r *Registry) IsSupported(providerType string) bool {
	_, exists := r.factories[providerType]
	return exists
}

// Factory functions for built-in providers

// NewEnvProviderFactory creates an environment provider
func NewEnvProviderFactory(cfg config.ProviderConfig, r *Registry) (provider.Provider, error) {
	return NewEnvProvider(EnvConfig{
		CacheEnabled: cfg.Cache.CacheEnabled(),
		CacheTTL:     cfg.Cache.CacheTTL(DefaultCacheTTL),
		CacheMaxSize: cfg.Cache.CacheMaxSize(),
		Logger:       r.logger,
	}), nil
}

// NewFileProviderFactory creates a file provider. The file is not read
// until the provider is initialized or first used.
func NewFileProviderFactory(cfg config.ProviderConfig, r *Registry) (provider.Provider, error) {
	if cfg.Path == "" {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeEnvVariables, nil,
			"file provider requires a path")
	}

	return NewFileProvider(FileConfig{
		FilePath:     cfg.Path,
		CacheEnabled: cfg.Cache.CacheEnabled(),
		CacheTTL:     cfg.Cache.CacheTTL(DefaultCacheTTL),
		CacheMaxSize: cfg.Cache.CacheMaxSize(),
		WatchFile:    cfg.Watch,
		Logger:       r.logger,
	}), nil
}

// NewHybridProviderFactory creates a hybrid provider and its children
func NewHybridProviderFactory(cfg config.ProviderConfig, r *Registry) (provider.Provider, error) {
	if cfg.Primary == nil {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeHybrid, nil,
			"Hybrid provider requires a primary provider")
	}

	primary, err := r.CreateProvider(*cfg.Primary)
	if err != nil {
		return nil, err
	}

	var fallback provider.Provider
	if cfg.Fallback != nil {
		fallback, err = r.CreateProvider(*cfg.Fallback)
		if err != nil {
			return nil, err
		}
	}

	return NewHybridProvider(HybridConfig{
		Primary:      primary,
		Fallback:     fallback,
		StrictMode:   cfg.StrictMode,
		CacheEnabled: cfg.Cache.CacheEnabled(),
		CacheTTL:     cfg.Cache.CacheTTL(DefaultCacheTTL),
		CacheMaxSize: cfg.Cache.CacheMaxSize(),
		Logger:       r.logger,
	})
}

// NewAWSSecretsManagerProviderFactory rejects the AWS backend: only its
// type tag is defined in this module. The configured region is named so
// the rejected entry can be found.
func NewAWSSecretsManagerProviderFactory(cfg config.ProviderConfig, r *Registry) (provider.Provider, error) {
	if cfg.AWS != nil && cfg.AWS.Region != "" {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeAWSSecretsManager, nil,
			"%s provider (region %s) is not available in this build", provider.TypeAWSSecretsManager, cfg.AWS.Region)
	}
	return nil, provider.NewError(provider.CodeInvalidConfiguration, provider.TypeAWSSecretsManager, nil,
		"%s provider is not available in this build", provider.TypeAWSSecretsManager)
}

// Initialize prepares every provider in the tree that needs it: file
// providers perform their initial load and start watching when configured.
// A fallback that fails to initialize is only logged; it is retried lazily
// on first use.
func Initialize(ctx context.Context, p provider.Provider) error {
	switch v := p.(type) {
	case *FileProvider:
		return v.Initialize(ctx)
	case *HybridProvider:
		if err := Initialize(ctx, v.Primary()); err != nil {
			return err
		}
		if v.Fallback() != nil {
			if err := Initialize(ctx, v.Fallback()); err != nil {
				v.logger.Warn("Fallback provider not ready: %v", err)
			}
		}
	}
	return nil
}
