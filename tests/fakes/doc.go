// Package fakes provides test doubles for secretchain provider interfaces.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	primary := fakes.NewFakeProvider(provider.TypeEnvVariables).
//	    WithError("API_KEY", provider.NewError(provider.CodeNotFound, provider.TypeEnvVariables, nil, "missing"))
//	fallback := fakes.NewFakeProvider(provider.TypeEnvVariables).
//	    WithSecret("API_KEY", "from-file")
//	hybrid, _ := providers.NewHybridProvider(providers.HybridConfig{Primary: primary, Fallback: fallback})
//	// Test hybrid methods...
package fakes
