// Package provider defines the contract shared by every secret provider in
// secretchain.
//
// A provider resolves named configuration secrets (API keys, database URLs,
// signing keys) from one backing store: the process environment, a secrets
// file on local disk, or a composition of other providers. Each provider
// owns a private TTL cache; callers never see a cache entry after it has
// expired.
//
// # Provider Families
//
// Providers report a closed Type tag:
//   - TypeEnvVariables: process environment and file-backed secrets. File
//     providers report this tag too, since to a caller both are the same
//     kind of secret stored on a different medium.
//   - TypeAWSSecretsManager: reserved for an AWS Secrets Manager backend.
//     Only the contract is defined here.
//   - TypeHybrid: a primary provider with an optional fallback.
//
// # Implementing a Provider
//
//	type MyProvider struct {
//	    cache *cache.TTL[*provider.SecretValue]
//	}
//
//	func (p *MyProvider) GetSecret(ctx context.Context, key string, opts provider.GetOptions) (*provider.SecretValue, error) {
//	    ctx, cancel := provider.WithTimeout(ctx, opts)
//	    defer cancel()
//	    // serve from cache, then the backing store
//	}
//
//	func (p *MyProvider) GetSecrets(ctx context.Context, keys []string) (map[string]*provider.SecretValue, error) {
//	    return provider.CollectSecrets(ctx, p.Type(), keys, func(ctx context.Context, key string) (*provider.SecretValue, error) {
//	        return p.GetSecret(ctx, key, provider.GetOptions{})
//	    })
//	}
//
// # Error Handling
//
// Every failure is a *ProviderError carrying one ErrorCode. Use CodeOf or
// IsNotFound to branch on recoverability:
//
//	if _, err := p.GetSecret(ctx, "JWT_SECRET", provider.GetOptions{}); provider.IsNotFound(err) {
//	    // fall back to a default
//	}
//
// HealthCheck never returns an error; every failure collapses to false.
//
// # Security Considerations
//
// Providers must never log secret values. Use logging.Secret or logging.Mask
// when a value has to appear near a log line.
//
// # Threading and Concurrency
//
// Implementations must be safe for concurrent use.
package provider
