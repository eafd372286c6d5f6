package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/systmms/secretchain/pkg/provider"
)

// FakeProvider is a manual fake implementation of provider.Provider.
//
// It keeps secrets in memory and has no cache of its own: every GetSecret
// returns a freshly allocated *SecretValue, so callers can tell a cached
// object from a backing-store read. Cache calls made on it are recorded.
//
// Example usage:
//
//	fake := fakes.NewFakeProvider(provider.TypeEnvVariables).
//	    WithSecret("DATABASE_URL", "postgres://localhost/app").
//	    WithError("API_KEY", errors.New("connection failed"))
//
//	secret, err := fake.GetSecret(ctx, "DATABASE_URL", provider.GetOptions{})
type FakeProvider struct {
	typ provider.Type

	// Test data storage
	secrets map[string]string

	// Behavior control
	failOn       map[string]error // key -> error to return
	failOnce     map[string]error // key -> error for the next call only
	resolveDelay time.Duration    // simulate backend latency
	healthy      bool
	disposeErr   error

	// Call tracking
	callCount   map[string]int
	invalidated []string
	lastOptions provider.GetOptions
	disposed    bool

	// Thread safety
	mu sync.RWMutex
}

// NewFakeProvider creates a healthy FakeProvider reporting typ.
func NewFakeProvider(typ provider.Type) *FakeProvider {
	return &FakeProvider{
		typ:       typ,
		secrets:   make(map[string]string),
		failOn:    make(map[string]error),
		failOnce:  make(map[string]error),
		callCount: make(map[string]int),
		healthy:   true,
	}
}

// WithSecret adds a secret to the fake provider.
func (f *FakeProvider) WithSecret(key, value string) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.secrets[key] = value
	return f
}

// WithoutSecret removes a secret, as if it were deleted from the backend.
func (f *FakeProvider) WithoutSecret(key string) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.secrets, key)
	return f
}

// WithError configures the fake to return err for key.
func (f *FakeProvider) WithError(key string, err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failOn[key] = err
	return f
}

// WithErrorOnce makes the next GetSecret for key fail with err. Later calls
// behave normally.
func (f *FakeProvider) WithErrorOnce(key string, err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failOnce[key] = err
	return f
}

// WithDelay adds artificial latency to GetSecret calls.
func (f *FakeProvider) WithDelay(d time.Duration) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolveDelay = d
	return f
}

// WithHealth sets the HealthCheck result.
func (f *FakeProvider) WithHealth(healthy bool) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.healthy = healthy
	return f
}

// WithDisposeError makes Dispose return err.
func (f *FakeProvider) WithDisposeError(err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disposeErr = err
	return f
}

// GetSecret returns the configured secret or error for key. Unknown keys
// fail with a NOT_FOUND ProviderError.
func (f *FakeProvider) GetSecret(ctx context.Context, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
	f.trackCall("GetSecret")

	f.mu.Lock()
	f.lastOptions = opts
	delay := f.resolveDelay
	f.mu.Unlock()

	ctx, cancel := provider.WithTimeout(ctx, opts)
	defer cancel()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if err := provider.ContextError(ctx, f.typ, key); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failOnce[key]; ok {
		delete(f.failOnce, key)
		return nil, err
	}
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}

	value, ok := f.secrets[key]
	if !ok {
		return nil, provider.NewError(provider.CodeNotFound, f.typ, nil, "Secret '%s' not found in fake provider", key)
	}

	return &provider.SecretValue{
		Value:    value,
		Metadata: provider.SecretMetadata{CreatedAt: time.Now()},
	}, nil
}

// GetSecrets resolves keys with the discard-on-any-failure policy.
func (f *FakeProvider) GetSecrets(ctx context.Context, keys []string) (map[string]*provider.SecretValue, error) {
	return provider.CollectSecrets(ctx, f.typ, keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
		return f.GetSecret(ctx, key, provider.GetOptions{})
	})
}

// HealthCheck returns the configured health.
func (f *FakeProvider) HealthCheck(ctx context.Context) bool {
	f.trackCall("HealthCheck")

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.healthy
}

// Type returns the configured type tag.
func (f *FakeProvider) Type() provider.Type {
	return f.typ
}

// InvalidateCache records key.
func (f *FakeProvider) InvalidateCache(key string) {
	f.trackCall("InvalidateCache")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, key)
}

// ClearCache records the call.
func (f *FakeProvider) ClearCache() {
	f.trackCall("ClearCache")
}

// AvailableKeys lists configured secret keys.
func (f *FakeProvider) AvailableKeys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.secrets))
	for k := range f.secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasSecret reports whether key is configured.
func (f *FakeProvider) HasSecret(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.secrets[key]
	return ok
}

// Reload records the call.
func (f *FakeProvider) Reload(ctx context.Context) error {
	f.trackCall("Reload")
	return nil
}

// Dispose records the call and returns the configured error.
func (f *FakeProvider) Dispose() error {
	f.trackCall("Dispose")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
	return f.disposeErr
}

// Disposed reports whether Dispose was called.
func (f *FakeProvider) Disposed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.disposed
}

// InvalidatedKeys returns every key passed to InvalidateCache, in order.
func (f *FakeProvider) InvalidatedKeys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string(nil), f.invalidated...)
}

// LastOptions returns the options of the most recent GetSecret call.
func (f *FakeProvider) LastOptions() provider.GetOptions {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastOptions
}

// GetCallCount returns the number of times a method was called.
//
// Method names: "GetSecret", "HealthCheck", "InvalidateCache",
// "ClearCache", "Reload", "Dispose".
func (f *FakeProvider) GetCallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.callCount[method]
}

// ResetCallCount resets all method call counters to zero.
func (f *FakeProvider) ResetCallCount() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount = make(map[string]int)
	f.invalidated = nil
}

// trackCall increments the call counter for a method.
func (f *FakeProvider) trackCall(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount[method]++
}

// String returns a string representation of the fake provider.
func (f *FakeProvider) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return fmt.Sprintf("FakeProvider{type=%s, secrets=%d}", f.typ, len(f.secrets))
}

var (
	_ provider.Provider  = (*FakeProvider)(nil)
	_ provider.KeyLister = (*FakeProvider)(nil)
	_ provider.Reloader  = (*FakeProvider)(nil)
	_ provider.Disposer  = (*FakeProvider)(nil)
)
