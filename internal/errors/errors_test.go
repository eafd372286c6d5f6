package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
	assert.Contains(t, errMsg, "💡")
}

func TestUserErrorFallsBackToWrappedMessage(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("disk full")
	err := errors.UserError{Err: base}

	assert.Equal(t, "disk full", err.Error())
	assert.ErrorIs(t, err, base)
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "provider.type",
		Value:      "vault",
		Message:    "unknown provider type",
		Suggestion: "Supported types: env, file, hybrid",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "provider.type")
	assert.Contains(t, errMsg, "vault")
	assert.Contains(t, errMsg, "unknown provider type")
	assert.Contains(t, errMsg, "env, file, hybrid")
}

func TestFromProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        *provider.ProviderError
		suggestion string
	}{
		{
			name:       "missing key",
			err:        provider.NewError(provider.CodeNotFound, provider.TypeEnvVariables, nil, "Secret 'API_KEY' not found in environment variables"),
			suggestion: "secretchain keys",
		},
		{
			name:       "missing file",
			err:        provider.NewError(provider.CodeNotFound, provider.TypeEnvVariables, nil, "Secrets file not found: secrets.json"),
			suggestion: "SECRETS_FILE_PATH",
		},
		{
			name:       "bad file",
			err:        provider.NewError(provider.CodeInvalidConfiguration, provider.TypeEnvVariables, nil, "Invalid secrets file: nested value"),
			suggestion: "flat object",
		},
		{
			name:       "bad config",
			err:        provider.NewError(provider.CodeInvalidConfiguration, provider.TypeHybrid, nil, "Hybrid provider requires a primary provider"),
			suggestion: "'provider' section",
		},
		{
			name:       "timeout",
			err:        provider.NewError(provider.CodeTimeout, provider.TypeEnvVariables, context.DeadlineExceeded, "Timed out resolving secret 'X'"),
			suggestion: "--timeout",
		},
		{
			name:       "unavailable",
			err:        provider.NewError(provider.CodeProviderUnavailable, provider.TypeEnvVariables, nil, "cancelled"),
			suggestion: "secretchain health",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errors.FromProvider(tt.err)

			var ue errors.UserError
			require.True(t, stderrors.As(err, &ue))
			assert.Equal(t, tt.err.Message, ue.Message)
			assert.Contains(t, ue.Suggestion, tt.suggestion)
			assert.Contains(t, ue.Details, string(tt.err.Code))

			var pe *provider.ProviderError
			require.True(t, stderrors.As(err, &pe))
			assert.Same(t, tt.err, pe)
		})
	}
}

func TestFromProviderPassesThroughOtherErrors(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errors.FromProvider(nil))

	plain := fmt.Errorf("plain")
	assert.Same(t, plain, errors.FromProvider(plain))
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout code", provider.NewError(provider.CodeTimeout, provider.TypeEnvVariables, nil, "slow"), true},
		{"network code", provider.NewError(provider.CodeNetworkError, provider.TypeEnvVariables, nil, "down"), true},
		{"unavailable code", provider.NewError(provider.CodeProviderUnavailable, provider.TypeEnvVariables, nil, "gone"), true},
		{"not found code", provider.NewError(provider.CodeNotFound, provider.TypeEnvVariables, nil, "timeout in message"), false},
		{"invalid config code", provider.NewError(provider.CodeInvalidConfiguration, provider.TypeEnvVariables, nil, "bad"), false},
		{"plain timeout", fmt.Errorf("i/o timeout"), true},
		{"plain broken pipe", fmt.Errorf("write: broken pipe"), true},
		{"plain other", fmt.Errorf("bad input"), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.IsRetryable(tt.err))
		})
	}
}

func TestSimplifyError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, errors.SimplifyError(nil))
	})

	t.Run("user errors pass through", func(t *testing.T) {
		ue := errors.UserError{Message: "already friendly"}
		assert.Equal(t, ue, errors.SimplifyError(ue))
	})

	t.Run("provider errors gain a suggestion", func(t *testing.T) {
		pe := provider.NewError(provider.CodeNotFound, provider.TypeEnvVariables, nil, "Secret 'A' not found in environment variables")
		var ue errors.UserError
		require.True(t, stderrors.As(errors.SimplifyError(fmt.Errorf("get: %w", pe)), &ue))
		assert.NotEmpty(t, ue.Suggestion)
	})

	t.Run("yaml", func(t *testing.T) {
		var ce errors.ConfigError
		require.True(t, stderrors.As(errors.SimplifyError(fmt.Errorf("yaml: line 3: did not find expected key")), &ce))
		assert.Equal(t, "Invalid YAML format", ce.Message)
	})

	t.Run("permission denied", func(t *testing.T) {
		var ue errors.UserError
		require.True(t, stderrors.As(errors.SimplifyError(fmt.Errorf("open /etc/x: permission denied")), &ue))
		assert.Equal(t, "Permission denied", ue.Message)
	})
}

// TestErrorMessagesDoNotLeakSecrets verifies redaction survives error wrapping
func TestErrorMessagesDoNotLeakSecrets(t *testing.T) {
	t.Parallel()

	secretValue := "api-key-super-secret-123"
	baseErr := fmt.Errorf("authentication failed with key: %s", logging.Secret(secretValue))

	err := errors.UserError{Message: "lookup failed", Err: baseErr}

	assert.NotContains(t, err.Error(), secretValue)
	assert.NotContains(t, baseErr.Error(), secretValue)
}
