package testutil

import (
	"os"
	"testing"
)

// SetupTestEnv sets environment variables for the duration of a test.
//
// Previous values are restored automatically when the test completes.
// Tests using it must not call t.Parallel().
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "JWT_SECRET":   "abc123",
//	    "DATABASE_URL": "postgres://localhost/app",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		t.Setenv(key, value)
	}
}

// UnsetTestEnv removes environment variables for the rest of a test and
// restores them afterwards.
func UnsetTestEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		// t.Setenv registers the restore.
		orig, _ := os.LookupEnv(key)
		t.Setenv(key, orig)
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
	}
}
