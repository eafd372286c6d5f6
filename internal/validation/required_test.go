package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/pkg/provider"
	"github.com/systmms/secretchain/tests/fakes"
	"github.com/systmms/secretchain/tests/testutil"
)

func TestCheckRequired(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeProvider(provider.TypeEnvVariables).
		WithSecret("JWT_SECRET", "a-long-enough-signing-key").
		WithSecret("SHORT", "abc").
		WithSecret("EMPTY", "").
		WithError("BROKEN", provider.NewError(provider.CodeTimeout, provider.TypeEnvVariables, nil, "slow"))

	tests := []struct {
		name     string
		reqs     []Requirement
		valid    bool
		missing  []string
		warnings []string
	}{
		{
			name:  "all present",
			reqs:  []Requirement{{Key: "JWT_SECRET", MinLength: 8}},
			valid: true,
		},
		{
			name:    "absent",
			reqs:    []Requirement{{Key: "JWT_SECRET"}, {Key: "DATABASE_URL"}},
			missing: []string{"DATABASE_URL"},
		},
		{
			name:    "too short",
			reqs:    []Requirement{{Key: "SHORT", MinLength: 8}},
			missing: []string{"SHORT (shorter than 8 characters)"},
		},
		{
			name:    "empty",
			reqs:    []Requirement{{Key: "EMPTY"}},
			missing: []string{"EMPTY (empty)"},
		},
		{
			name:    "lookup failure names the code",
			reqs:    []Requirement{{Key: "BROKEN"}},
			missing: []string{"BROKEN (lookup failed: TIMEOUT)"},
		},
		{
			name:     "optional produces warnings",
			reqs:     []Requirement{{Key: "JWT_SECRET"}, {Key: "SLACK_WEBHOOK", Optional: true}},
			valid:    true,
			warnings: []string{"SLACK_WEBHOOK"},
		},
		{
			name:  "no requirements",
			valid: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := CheckRequired(context.Background(), fake, tt.reqs, nil)
			require.NotNil(t, result)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.missing, result.Missing)
			assert.Equal(t, tt.warnings, result.Warnings)
		})
	}
}

func TestCheckRequiredNeverLogsValues(t *testing.T) {
	t.Parallel()

	logger := testutil.NewTestLogger(t, true)
	fake := fakes.NewFakeProvider(provider.TypeEnvVariables).
		WithSecret("JWT_SECRET", "super-secret-signing-key")

	result := CheckRequired(context.Background(), fake, []Requirement{{Key: "JWT_SECRET", MinLength: 100}}, logger.Logger)

	assert.False(t, result.Valid)
	for _, m := range result.Missing {
		assert.NotContains(t, m, "super-secret-signing-key")
	}
	logger.AssertNotContains(t, "super-secret-signing-key")
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	reqs := FromConfig(config.DefaultRequired())

	assert.Equal(t, []Requirement{
		{Key: "JWT_SECRET", MinLength: 8},
		{Key: "DATABASE_URL", MinLength: 8},
	}, reqs)

	reqs = FromConfig([]config.RequiredSecret{{Key: "SLACK_WEBHOOK", MinLength: 10, Optional: true}})
	assert.Equal(t, []Requirement{{Key: "SLACK_WEBHOOK", MinLength: 10, Optional: true}}, reqs)
}
