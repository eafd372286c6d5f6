package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/providers"
	"github.com/systmms/secretchain/pkg/provider"
)

// loadProvider loads the configuration, builds the configured provider tree
// and initializes it. The returned release func disposes the tree and must
// always be called.
func loadProvider(ctx context.Context, cfg *config.Config) (provider.Provider, func(), error) {
	if err := cfg.Load(); err != nil {
		return nil, nil, err
	}

	registry := providers.NewRegistry(cfg.Logger)
	p, err := registry.CreateProvider(cfg.Definition.Provider)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if d, ok := p.(provider.Disposer); ok {
			if err := d.Dispose(); err != nil {
				cfg.Logger.Warn("Failed to dispose provider: %v", err)
			}
		}
	}

	if err := providers.Initialize(ctx, p); err != nil {
		release()
		return nil, nil, err
	}

	return p, release, nil
}

// getWithRetry resolves key, retrying once when the failure is transient
// and the caller's ctx is still live.
func getWithRetry(ctx context.Context, cfg *config.Config, p provider.Provider, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
	value, err := p.GetSecret(ctx, key, opts)
	if err == nil || !dserrors.IsRetryable(err) || ctx.Err() != nil {
		return value, err
	}

	cfg.Logger.Debug("Retrying %s after %s", key, provider.CodeOf(err))
	return p.GetSecret(ctx, key, opts)
}

// collectWithRetry is GetSecrets with getWithRetry applied per key.
func collectWithRetry(ctx context.Context, cfg *config.Config, p provider.Provider, keys []string, opts provider.GetOptions) (map[string]*provider.SecretValue, error) {
	return provider.CollectSecrets(ctx, p.Type(), keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
		return getWithRetry(ctx, cfg, p, key, opts)
	})
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
