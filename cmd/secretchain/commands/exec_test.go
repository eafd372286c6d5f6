package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretchain/internal/execenv"
	"github.com/systmms/secretchain/pkg/provider"
)

func TestExecCommand(t *testing.T) {
	t.Parallel()

	t.Run("injects required secrets", func(t *testing.T) {
		t.Parallel()

		cfg := requiredConfig(t, testSecrets, map[string]int{"API_KEY": 8})
		output, err := executeCommand(t, NewExecCommand(cfg), "--", "sh", "-c", `printf %s "$API_KEY"`)
		require.NoError(t, err)

		assert.Equal(t, "test-api-key-123", output)
	})

	t.Run("explicit keys", func(t *testing.T) {
		t.Parallel()

		cfg := requiredConfig(t, testSecrets, map[string]int{"API_KEY": 8})
		output, err := executeCommand(t, NewExecCommand(cfg), "--keys", "DATABASE_URL", "--", "sh", "-c", `printf %s "$DATABASE_URL"`)
		require.NoError(t, err)

		assert.Equal(t, "postgres://localhost/testdb", output)
	})

	t.Run("does not start when a secret is missing", func(t *testing.T) {
		t.Parallel()

		cfg := requiredConfig(t, testSecrets, map[string]int{"JWT_SECRET": 8})
		output, err := executeCommand(t, NewExecCommand(cfg), "--", "sh", "-c", "echo started")
		require.Error(t, err)

		assert.True(t, provider.IsNotFound(err))
		assert.Empty(t, output)
	})

	t.Run("passes the exit status through", func(t *testing.T) {
		t.Parallel()

		cfg := requiredConfig(t, testSecrets, map[string]int{"API_KEY": 8})
		_, err := executeCommand(t, NewExecCommand(cfg), "--", "sh", "-c", "exit 4")

		var exitErr *execenv.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 4, exitErr.Code)
	})
}
