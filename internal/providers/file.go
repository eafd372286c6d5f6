package providers

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/systmms/secretchain/internal/cache"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/internal/secretfile"
	"github.com/systmms/secretchain/pkg/provider"
)

// FileConfig configures a FileProvider.
type FileConfig struct {
	// FilePath is the flat JSON or YAML secrets file.
	FilePath string

	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxSize int

	// WatchFile reloads the file when it changes on disk. While a watch is
	// active the elapsed-time staleness reload is skipped.
	WatchFile     bool
	WatchDebounce time.Duration

	Logger *logging.Logger

	// Now and ReadFile default to time.Now and os.ReadFile.
	Now      func() time.Time
	ReadFile func(name string) ([]byte, error)
}

// DefaultFileConfig returns caching enabled with a five minute TTL and no
// watching.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		FilePath:     path,
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
	}
}

// FileProvider resolves secrets from a secrets file loaded into memory.
//
// The in-memory map is the only source of truth between reloads. Every
// reload replaces the whole map and clears the cache while holding the
// write lock, so readers observe either the old map and cache or the new
// ones.
type FileProvider struct {
	config FileConfig
	logger *logging.Logger
	name   string

	// reloadMu serializes loads so an older read can never overwrite a
	// newer one.
	reloadMu sync.Mutex

	mu           sync.RWMutex
	secrets      map[string]string
	lastLoadTime time.Time
	cache        *cache.TTL[*provider.SecretValue]

	lifecycleMu sync.Mutex
	watcher     *fileWatcher
	watching    atomic.Bool
	disposed    bool

	reloads atomic.Int64
}

// NewFileProvider creates a file provider. Nothing is read until
// Initialize, Reload or the first GetSecret.
func NewFileProvider(config FileConfig) *FileProvider {
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.ReadFile == nil {
		config.ReadFile = os.ReadFile
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	name := filepath.Base(config.FilePath)

	return &FileProvider{
		config:  config,
		logger:  config.Logger.With("provider", "file").With("file", name),
		name:    name,
		secrets: make(map[string]string),
		cache: cache.New[*provider.SecretValue](cache.Config{
			Enabled: config.CacheEnabled,
			TTL:     config.CacheTTL,
			MaxSize: config.CacheMaxSize,
			Now:     config.Now,
		}),
	}
}

// Initialize performs the initial load and, when WatchFile is set,
// subscribes to change notifications. A failed subscription is logged and
// the provider keeps working on TTL-driven reloads.
func (p *FileProvider) Initialize(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.disposed {
		return provider.NewError(provider.CodeProviderUnavailable, p.Type(), nil,
			"File provider for %s has been disposed", p.name)
	}

	if err := p.load(ctx, ReloadTriggerInitial); err != nil {
		return err
	}

	if p.config.WatchFile && p.watcher == nil {
		w, err := newFileWatcher(p.config.FilePath, p.config.WatchDebounce, p.logger, p.onFileChange)
		if err != nil {
			p.logger.Warn("Failed to watch secrets file, relying on TTL reloads: %v", err)
			return nil
		}
		p.watcher = w
		p.watching.Store(true)
		p.logger.Info("Watching secrets file for changes")
	}

	return nil
}

func (p *FileProvider) onFileChange() {
	p.logger.Info("Secrets file changed, reloading")
	if err := p.load(context.Background(), ReloadTriggerWatch); err != nil {
		p.logger.Error("Failed to reload secrets file: %v", err)
	}
}

// Reload re-reads the file immediately, regardless of the TTL.
func (p *FileProvider) Reload(ctx context.Context) error {
	return p.load(ctx, ReloadTriggerManual)
}

// Dispose releases the file-watch subscription, if any.
func (p *FileProvider) Dispose() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.disposed = true
	if p.watcher == nil {
		return nil
	}

	err := p.watcher.Close()
	p.watcher = nil
	p.watching.Store(false)
	return err
}

// load reads and parses the file, then swaps in the new map and clears the
// cache. On failure the previous map stays in place.
func (p *FileProvider) load(ctx context.Context, trigger string) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	return p.loadLocked(ctx, trigger)
}

// loadContextError reports a finished ctx in terms of the file load rather
// than a key lookup.
func (p *FileProvider) loadContextError(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return provider.NewError(provider.CodeTimeout, p.Type(), err, "Timed out loading secrets file %s", p.name)
	default:
		return provider.NewError(provider.CodeProviderUnavailable, p.Type(), err, "Loading secrets file %s was cancelled", p.name)
	}
}

// loadLocked is load with reloadMu already held.
func (p *FileProvider) loadLocked(ctx context.Context, trigger string) error {
	if err := p.loadContextError(ctx); err != nil {
		return err
	}

	secrets, err := p.readSecrets()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.secrets = secrets
	p.lastLoadTime = p.config.Now()
	p.cache.Clear()
	p.mu.Unlock()

	p.reloads.Add(1)
	recordFileReload(trigger)
	p.logger.Debug("Loaded %d secret(s) (%s)", len(secrets), trigger)

	return nil
}

func (p *FileProvider) readSecrets() (map[string]string, error) {
	data, err := p.config.ReadFile(p.config.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, provider.NewError(provider.CodeNotFound, p.Type(), err,
				"Secrets file not found: %s", p.name)
		}

		detail := err
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			detail = pathErr.Err
		}
		return nil, provider.NewError(provider.CodeProviderUnavailable, p.Type(), err,
			"Failed to load secrets file %s: %v", p.name, detail)
	}

	secrets, err := secretfile.Parse(p.config.FilePath, data)
	if err != nil {
		return nil, provider.NewError(provider.CodeInvalidConfiguration, p.Type(), err,
			"Invalid secrets file: %v", err)
	}

	return secrets, nil
}

// stale reports whether the in-memory map has outlived the cache TTL with
// no active watch to refresh it.
func (p *FileProvider) stale() bool {
	if p.watching.Load() {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Now().Sub(p.lastLoadTime) > p.config.CacheTTL
}

func (p *FileProvider) reloadIfStale(ctx context.Context) error {
	if !p.stale() {
		return nil
	}

	// Re-check under reloadMu so concurrent callers trigger one reload.
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()
	if !p.stale() {
		return nil
	}

	return p.loadLocked(ctx, ReloadTriggerStale)
}

// GetSecret resolves key from the in-memory map.
//
// A live cache entry is served first. Otherwise, when no watch is active
// and the map is older than the cache TTL, the file is reloaded before the
// lookup.
func (p *FileProvider) GetSecret(ctx context.Context, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
	ctx, cancel := provider.WithTimeout(ctx, opts)
	defer cancel()

	if err := provider.ContextError(ctx, p.Type(), key); err != nil {
		recordLookupError("file", err)
		return nil, err
	}

	if opts.VersionID != "" {
		p.logger.Debug("Ignoring version %q for %s: secrets files are unversioned", opts.VersionID, key)
	}

	if !opts.BypassCache {
		p.mu.RLock()
		cached, ok := p.cache.Get(key)
		p.mu.RUnlock()
		if ok {
			recordCacheHit("file")
			return cached, nil
		}
	}
	recordCacheMiss("file")

	if err := p.reloadIfStale(ctx); err != nil {
		recordLookupError("file", err)
		return nil, err
	}

	if err := provider.ContextError(ctx, p.Type(), key); err != nil {
		recordLookupError("file", err)
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.secrets[key]
	if !ok {
		err := provider.NewError(provider.CodeNotFound, p.Type(), nil,
			"Secret '%s' not found in file: %s", key, p.name)
		recordLookupError("file", err)
		return nil, err
	}

	secret := &provider.SecretValue{
		Value: value,
		Metadata: provider.SecretMetadata{
			CreatedAt: p.lastLoadTime,
		},
	}
	p.cache.Set(key, secret, "")

	return secret, nil
}

// GetSecrets resolves keys with the discard-on-any-failure policy.
func (p *FileProvider) GetSecrets(ctx context.Context, keys []string) (map[string]*provider.SecretValue, error) {
	return provider.CollectSecrets(ctx, p.Type(), keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
		return p.GetSecret(ctx, key, provider.GetOptions{})
	})
}

// HealthCheck succeeds only if the file is readable and parses right now.
func (p *FileProvider) HealthCheck(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := p.readSecrets()
	return err == nil
}

// Type returns TypeEnvVariables: file-backed secrets are the same kind of
// secret as environment variables.
func (p *FileProvider) Type() provider.Type {
	return provider.TypeEnvVariables
}

// InvalidateCache removes key from the cache.
func (p *FileProvider) InvalidateCache(key string) {
	p.cache.Delete(key)
}

// ClearCache empties the cache.
func (p *FileProvider) ClearCache() {
	p.cache.Clear()
}

// Cached reports whether key has a live cache entry.
func (p *FileProvider) Cached(key string) bool {
	return p.cache.Has(key)
}

// AvailableKeys lists the keys of the in-memory map.
func (p *FileProvider) AvailableKeys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.secrets))
	for k := range p.secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasSecret reports whether key is in the in-memory map.
func (p *FileProvider) HasSecret(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.secrets[key]
	return ok
}

// LastLoadTime returns when the file was last parsed successfully.
func (p *FileProvider) LastLoadTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastLoadTime
}

// Watching reports whether a change subscription is active.
func (p *FileProvider) Watching() bool {
	return p.watching.Load()
}

// ReloadCount returns the number of successful loads so far.
func (p *FileProvider) ReloadCount() int64 {
	return p.reloads.Load()
}

// Path returns the configured file path.
func (p *FileProvider) Path() string {
	return p.config.FilePath
}
