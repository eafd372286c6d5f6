package provider

import (
	"context"
	"testing"
	"time"
)

// ContractTest defines the standard test suite every provider must pass.
type ContractTest struct {
	// CreateProvider creates a new instance of the provider to test.
	CreateProvider func(t *testing.T) Provider

	// SetupTestSecret makes a secret resolvable by p and returns its key,
	// the expected value and a cleanup function.
	SetupTestSecret func(t *testing.T, p Provider) (key, value string, cleanup func())

	// CacheDisabled skips the cache identity checks.
	CacheDisabled bool
}

// RunContractTests runs the standard provider contract test suite.
func RunContractTests(t *testing.T, contract ContractTest) {
	t.Run("Contract", func(t *testing.T) {
		t.Run("Type", func(t *testing.T) {
			testProviderType(t, contract)
		})

		t.Run("HealthCheck", func(t *testing.T) {
			testProviderHealthCheck(t, contract)
		})

		t.Run("GetSecret", func(t *testing.T) {
			testProviderGetSecret(t, contract)
		})

		if !contract.CacheDisabled {
			t.Run("CacheHit", func(t *testing.T) {
				testProviderCacheHit(t, contract)
			})

			t.Run("InvalidateCache", func(t *testing.T) {
				testProviderInvalidateCache(t, contract)
			})
		}

		t.Run("NotFound", func(t *testing.T) {
			testProviderNotFound(t, contract)
		})

		t.Run("GetSecretsDiscardsPartial", func(t *testing.T) {
			testProviderGetSecretsDiscardsPartial(t, contract)
		})

		t.Run("ContextCancellation", func(t *testing.T) {
			testProviderContextCancellation(t, contract)
		})
	})
}

func missingKey() string {
	return "SECRETCHAIN_DEFINITELY_MISSING_" + time.Now().Format("20060102150405")
}

func testProviderType(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	typ := p.Type()
	if !typ.Valid() {
		t.Errorf("Provider.Type() returned unknown type %q", typ)
	}
	if typ != p.Type() {
		t.Error("Provider.Type() not consistent between calls")
	}
}

func testProviderHealthCheck(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	done := make(chan bool, 1)
	go func() {
		done <- p.HealthCheck(context.Background())
	}()

	select {
	case healthy := <-done:
		t.Logf("Provider.HealthCheck() = %v", healthy)
	case <-time.After(5 * time.Second):
		t.Error("Provider.HealthCheck() timed out after 5 seconds")
	}
}

func testProviderGetSecret(t *testing.T, contract ContractTest) {
	if contract.SetupTestSecret == nil {
		t.Skip("SetupTestSecret not provided, skipping resolve test")
		return
	}

	p := contract.CreateProvider(t)
	key, want, cleanup := contract.SetupTestSecret(t, p)
	defer cleanup()

	secret, err := p.GetSecret(context.Background(), key, GetOptions{})
	if err != nil {
		t.Fatalf("Provider.GetSecret() failed: %v", err)
	}
	if secret.Value != want {
		t.Error("Provider.GetSecret() returned a value that differs from the backing store")
	}
	if secret.Metadata.CreatedAt.IsZero() {
		t.Error("Provider.GetSecret() returned zero CreatedAt")
	}
}

func testProviderCacheHit(t *testing.T, contract ContractTest) {
	if contract.SetupTestSecret == nil {
		t.Skip("SetupTestSecret not provided, skipping cache test")
		return
	}

	p := contract.CreateProvider(t)
	key, _, cleanup := contract.SetupTestSecret(t, p)
	defer cleanup()

	ctx := context.Background()
	first, err := p.GetSecret(ctx, key, GetOptions{})
	if err != nil {
		t.Fatalf("Provider.GetSecret() failed: %v", err)
	}
	second, err := p.GetSecret(ctx, key, GetOptions{})
	if err != nil {
		t.Fatalf("Provider.GetSecret() second call failed: %v", err)
	}
	if first != second {
		t.Error("Provider.GetSecret() within TTL should return the cached object")
	}
}

func testProviderInvalidateCache(t *testing.T, contract ContractTest) {
	if contract.SetupTestSecret == nil {
		t.Skip("SetupTestSecret not provided, skipping invalidation test")
		return
	}

	p := contract.CreateProvider(t)
	key, _, cleanup := contract.SetupTestSecret(t, p)
	defer cleanup()

	ctx := context.Background()
	first, err := p.GetSecret(ctx, key, GetOptions{})
	if err != nil {
		t.Fatalf("Provider.GetSecret() failed: %v", err)
	}

	p.InvalidateCache(key)

	second, err := p.GetSecret(ctx, key, GetOptions{})
	if err != nil {
		t.Fatalf("Provider.GetSecret() after invalidation failed: %v", err)
	}
	if first == second {
		t.Error("Provider.GetSecret() after InvalidateCache returned the stale cached object")
	}
}

func testProviderNotFound(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	secret, err := p.GetSecret(context.Background(), missingKey(), GetOptions{})
	if err == nil {
		t.Fatalf("Provider.GetSecret() should fail for a missing key, got %v", secret != nil)
	}
	if !IsNotFound(err) {
		t.Errorf("Provider.GetSecret() returned %q, want %s", CodeOf(err), CodeNotFound)
	}
}

func testProviderGetSecretsDiscardsPartial(t *testing.T, contract ContractTest) {
	if contract.SetupTestSecret == nil {
		t.Skip("SetupTestSecret not provided, skipping batch test")
		return
	}

	p := contract.CreateProvider(t)
	key, _, cleanup := contract.SetupTestSecret(t, p)
	defer cleanup()

	results, err := p.GetSecrets(context.Background(), []string{key, missingKey()})
	if err == nil {
		t.Fatal("Provider.GetSecrets() should fail when any key is missing")
	}
	if results != nil {
		t.Error("Provider.GetSecrets() returned a partial map on failure")
	}
	if !IsNotFound(err) {
		t.Errorf("Provider.GetSecrets() returned %q, want %s", CodeOf(err), CodeNotFound)
	}
}

func testProviderContextCancellation(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetSecret(ctx, "ANY_KEY", GetOptions{})
	if err == nil {
		t.Error("Provider.GetSecret() should fail with cancelled context")
	}
}
