package providers_test

import (
	"testing"
	"time"

	"github.com/systmms/secretchain/internal/providers"
	"github.com/systmms/secretchain/pkg/provider"
	"github.com/systmms/secretchain/tests/fakes"
)

// Compile-time checks for the optional capabilities.
var (
	_ provider.KeyLister = (*providers.EnvProvider)(nil)
	_ provider.KeyLister = (*providers.FileProvider)(nil)
	_ provider.Reloader  = (*providers.FileProvider)(nil)
	_ provider.Disposer  = (*providers.FileProvider)(nil)
	_ provider.KeyLister = (*providers.HybridProvider)(nil)
	_ provider.Reloader  = (*providers.HybridProvider)(nil)
	_ provider.Disposer  = (*providers.HybridProvider)(nil)
)

func TestEnvProviderContract(t *testing.T) {
	t.Parallel()

	env := newFakeEnv(map[string]string{"CONTRACT_SECRET": "contract-value"})

	provider.RunContractTests(t, provider.ContractTest{
		CreateProvider: func(t *testing.T) provider.Provider {
			return newTestEnvProvider(env, newFakeClock())
		},
		SetupTestSecret: func(t *testing.T, p provider.Provider) (string, string, func()) {
			return "CONTRACT_SECRET", "contract-value", func() {}
		},
	})
}

func TestFileProviderContract(t *testing.T) {
	t.Parallel()

	store := newFileStore()
	store.Put(testSecretsPath, `{"CONTRACT_SECRET": "contract-value"}`)

	provider.RunContractTests(t, provider.ContractTest{
		CreateProvider: func(t *testing.T) provider.Provider {
			return newTestFileProvider(store, newFakeClock())
		},
		SetupTestSecret: func(t *testing.T, p provider.Provider) (string, string, func()) {
			return "CONTRACT_SECRET", "contract-value", func() {}
		},
	})
}

func TestHybridProviderContract(t *testing.T) {
	t.Parallel()

	provider.RunContractTests(t, provider.ContractTest{
		CreateProvider: func(t *testing.T) provider.Provider {
			primary := fakes.NewFakeProvider(provider.TypeEnvVariables)
			fallback := fakes.NewFakeProvider(provider.TypeEnvVariables).WithSecret("CONTRACT_SECRET", "contract-value")
			h, err := providers.NewHybridProvider(providers.HybridConfig{
				Primary:      primary,
				Fallback:     fallback,
				CacheEnabled: true,
				CacheTTL:     time.Minute,
			})
			if err != nil {
				t.Fatalf("NewHybridProvider() failed: %v", err)
			}
			return h
		},
		SetupTestSecret: func(t *testing.T, p provider.Provider) (string, string, func()) {
			return "CONTRACT_SECRET", "contract-value", func() {}
		},
	})
}
