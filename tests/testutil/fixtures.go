package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// WriteSecretsFile writes secrets to name inside a fresh temporary
// directory and returns the file's path. Names ending in .yaml or .yml are
// written as YAML, anything else as JSON.
//
// Example usage:
//
//	path := WriteSecretsFile(t, "secrets.json", map[string]string{
//	    "DATABASE_URL": "postgres://localhost/app",
//	})
func WriteSecretsFile(t *testing.T, name string, secrets map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	RewriteSecretsFile(t, path, secrets)
	return path
}

// RewriteSecretsFile replaces the content of an existing secrets file.
func RewriteSecretsFile(t *testing.T, path string, secrets map[string]string) {
	t.Helper()

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(secrets)
	default:
		data, err = json.MarshalIndent(secrets, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to encode secrets file: %v", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write secrets file %s: %v", path, err)
	}
}

// WriteRawFile writes content verbatim, for malformed-file tests.
func WriteRawFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
