package providers

import (
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// ProductionOptions configures NewProductionHybridProvider.
type ProductionOptions struct {
	// FilePath enables the file fallback when set.
	FilePath   string
	StrictMode bool
	Logger     *logging.Logger
}

// NewProductionHybridProvider builds the default layout: the environment
// as primary and, when a file path is given, the secrets file as fallback.
// Both children cache for five minutes and the file is not watched. The
// file is loaded lazily on first use.
func NewProductionHybridProvider(opts ProductionOptions) *HybridProvider {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	primary := NewEnvProvider(EnvConfig{
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
		Logger:       logger,
	})

	var fallback provider.Provider
	if opts.FilePath != "" {
		fallback = NewFileProvider(FileConfig{
			FilePath:     opts.FilePath,
			CacheEnabled: true,
			CacheTTL:     DefaultCacheTTL,
			WatchFile:    false,
			Logger:       logger,
		})
	}

	// Primary is never nil here, so construction cannot fail.
	hybrid, _ := NewHybridProvider(HybridConfig{
		Primary:      primary,
		Fallback:     fallback,
		StrictMode:   opts.StrictMode,
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
		Logger:       logger,
	})
	return hybrid
}
