package provider

import (
	"context"
	"time"
)

// Provider resolves secrets by key from a single backing store.
//
// Implementations must be safe for concurrent use. Each instance owns its
// cache; a Provider that composes others may still mutate its children's
// caches through InvalidateCache and ClearCache.
type Provider interface {
	// GetSecret resolves one key.
	//
	// A live cache entry is returned as the same *SecretValue that was
	// cached. With opts.BypassCache the backing store is always consulted.
	// Missing keys fail with a NOT_FOUND ProviderError.
	GetSecret(ctx context.Context, key string, opts GetOptions) (*SecretValue, error)

	// GetSecrets resolves every key independently.
	//
	// If any key fails, the call fails as a whole with a single NOT_FOUND
	// ProviderError naming every failed key, and no partial map is
	// returned. Use ResolveBestEffort when partial results are wanted.
	GetSecrets(ctx context.Context, keys []string) (map[string]*SecretValue, error)

	// HealthCheck reports whether the backing store is usable. It never
	// returns an error.
	HealthCheck(ctx context.Context) bool

	// Type returns the provider family tag.
	Type() Type

	// InvalidateCache removes one cached key.
	InvalidateCache(key string)

	// ClearCache removes every cached key.
	ClearCache()
}

// KeyLister is implemented by providers that can enumerate the key names
// they would resolve. Values are never exposed.
type KeyLister interface {
	AvailableKeys() []string
	HasSecret(key string) bool
}

// Reloader is implemented by providers whose backing store can be re-read
// on demand.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Disposer is implemented by providers holding resources that must be
// released at shutdown.
type Disposer interface {
	Dispose() error
}

// Type tags a provider family.
type Type string

const (
	// TypeAWSSecretsManager is reserved for an AWS Secrets Manager backend.
	TypeAWSSecretsManager Type = "aws-secrets-manager"

	// TypeEnvVariables covers the process environment and secrets files.
	TypeEnvVariables Type = "env-variables"

	// TypeHybrid is a primary provider with an optional fallback.
	TypeHybrid Type = "hybrid"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of the known provider families.
func (t Type) Valid() bool {
	switch t {
	case TypeAWSSecretsManager, TypeEnvVariables, TypeHybrid:
		return true
	}
	return false
}

// SecretValue is a resolved secret.
//
// Value must never be logged.
type SecretValue struct {
	Value    string         `json:"value"`
	Metadata SecretMetadata `json:"metadata"`
}

// SecretMetadata describes a resolved secret.
//
// CreatedAt is when the provider last materialized the value from its
// backing store (env: read time, file: last parse time), not when the
// value entered a cache. The rotation fields are carried for callers and
// are not acted on by any provider in this module.
type SecretMetadata struct {
	Version         string     `json:"version,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	LastRotated     *time.Time `json:"last_rotated,omitempty"`
	RotationEnabled bool       `json:"rotation_enabled,omitempty"`
}

// GetOptions tunes a single GetSecret call.
type GetOptions struct {
	// BypassCache skips the provider's cache for this call. The fresh
	// value is still written back to the cache.
	BypassCache bool

	// VersionID selects a secret version on versioned backends. The env,
	// file and hybrid providers accept it and otherwise ignore it.
	VersionID string

	// Timeout bounds the call. Zero means no timeout beyond ctx.
	Timeout time.Duration
}

// WithTimeout derives the context a provider should use for a call.
// The returned cancel func must always be called.
func WithTimeout(ctx context.Context, opts GetOptions) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}
