package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/pkg/provider"
	"github.com/systmms/secretchain/tests/testutil"
)

func TestStatsCommand_Hybrid(t *testing.T) {
	testutil.SetupTestEnv(t, map[string]string{"SECRETCHAIN_STATS_ENV_KEY": "from-env"})

	secretsPath := testutil.WriteSecretsFile(t, "secrets.json", map[string]string{"SECRETCHAIN_STATS_FILE_KEY": "from-file"})
	path := testutil.NewTestConfig(t).
		WithProvider(config.ProviderConfig{
			Type:     config.TypeHybrid,
			Primary:  &config.ProviderConfig{Type: config.TypeEnv},
			Fallback: &config.ProviderConfig{Type: config.TypeFile, Path: secretsPath},
		}).
		Write()
	cfg, _ := newTestConfig(t, path)

	output, err := executeCommand(t, NewStatsCommand(cfg), "--warm", "SECRETCHAIN_STATS_ENV_KEY,SECRETCHAIN_STATS_FILE_KEY,SECRETCHAIN_STATS_MISSING")
	require.NoError(t, err)

	var report StatsReport
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	assert.Equal(t, 2, report.Cache.Size)
	assert.Equal(t, 1, report.Cache.BySource.Primary)
	assert.Equal(t, 1, report.Cache.BySource.Fallback)
	assert.Equal(t, provider.TypeEnvVariables, report.Providers.Primary)
	assert.Equal(t, provider.TypeEnvVariables, report.Providers.Fallback)
	assert.False(t, report.Providers.StrictMode)
	assert.Equal(t, 2, report.Providers.CacheSize)
}

func TestStatsCommand_RequiresHybrid(t *testing.T) {
	t.Parallel()

	_, err := executeCommand(t, NewStatsCommand(fileConfig(t, testSecrets)))
	require.Error(t, err)

	var userErr dserrors.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "only available for the hybrid provider")
}
