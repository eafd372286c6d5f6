// Package testutil provides test utilities and helpers for secretchain tests.
//
// This package contains shared test infrastructure including configuration
// builders, secrets-file writers, environment helpers and a capturing logger.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systmms/secretchain/internal/config"
	"gopkg.in/yaml.v3"
)

// TestConfigBuilder provides a fluent API for building test configurations.
//
// Example usage:
//
//	path := NewTestConfig(t).
//	    WithProvider(config.ProviderConfig{
//	        Type:     config.TypeHybrid,
//	        Primary:  &config.ProviderConfig{Type: config.TypeEnv},
//	        Fallback: &config.ProviderConfig{Type: config.TypeFile, Path: secretsPath},
//	    }).
//	    WithRequired("JWT_SECRET", 8).
//	    Write()
type TestConfigBuilder struct {
	config  *config.Definition
	tempDir string
	t       *testing.T
}

// NewTestConfig creates a builder starting from an env-only provider and
// no required secrets.
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		config: &config.Definition{
			Version:  0,
			Provider: config.ProviderConfig{Type: config.TypeEnv},
			Required: []config.RequiredSecret{},
		},
		tempDir: t.TempDir(),
		t:       t,
	}
}

// WithProvider replaces the provider tree.
func (b *TestConfigBuilder) WithProvider(p config.ProviderConfig) *TestConfigBuilder {
	b.config.Provider = p
	return b
}

// WithRequired appends a required secret.
func (b *TestConfigBuilder) WithRequired(key string, minLength int) *TestConfigBuilder {
	b.config.Required = append(b.config.Required, config.RequiredSecret{Key: key, MinLength: minLength})
	return b
}

// WithMetricsAddr sets the metrics listen address.
func (b *TestConfigBuilder) WithMetricsAddr(addr string) *TestConfigBuilder {
	b.config.Metrics.Addr = addr
	return b
}

// Build returns the built configuration Definition.
func (b *TestConfigBuilder) Build() *config.Definition {
	b.t.Helper()

	return b.config
}

// Write writes the configuration to a temporary file and returns the path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	path := filepath.Join(b.tempDir, "secretchain.yaml")

	data, err := yaml.Marshal(b.config)
	if err != nil {
		b.t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.t.Fatalf("Failed to write test config: %v", err)
	}

	return path
}

// WriteTestConfig writes a hand-written YAML configuration to a temporary
// file and returns its path.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secretchain.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return path
}
