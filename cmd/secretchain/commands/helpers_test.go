package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/tests/testutil"
)

// newTestConfig returns a Config for path whose environment lookups see
// nothing, so SECRETS_FILE_PATH on the test host cannot leak in.
func newTestConfig(t *testing.T, path string) (*config.Config, *testutil.TestLogger) {
	t.Helper()

	logger := testutil.NewTestLogger(t, false)
	return &config.Config{
		Path:      path,
		Logger:    logger.Logger,
		LookupEnv: func(string) (string, bool) { return "", false },
	}, logger
}

// fileConfig writes secrets and a config using a file-only provider.
func fileConfig(t *testing.T, secrets map[string]string) *config.Config {
	t.Helper()

	secretsPath := testutil.WriteSecretsFile(t, "secrets.json", secrets)
	path := testutil.NewTestConfig(t).
		WithProvider(config.ProviderConfig{Type: config.TypeFile, Path: secretsPath}).
		Write()

	cfg, _ := newTestConfig(t, path)
	return cfg
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), cmd, args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}
