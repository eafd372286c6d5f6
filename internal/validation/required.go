// Package validation checks that the secrets an application needs at
// startup actually resolve.
package validation

import (
	"context"
	"fmt"

	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/internal/logging"
	"github.com/systmms/secretchain/pkg/provider"
)

// Requirement names a secret that must resolve.
type Requirement struct {
	Key string
	// MinLength rejects values shorter than this many characters.
	MinLength int
	// Optional requirements produce warnings instead of failures.
	Optional bool
}

// Result contains the result of a validation. It never carries secret
// values.
type Result struct {
	Valid    bool     `json:"valid"`
	Missing  []string `json:"missing,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// FromConfig converts the configured required secrets.
func FromConfig(required []config.RequiredSecret) []Requirement {
	reqs := make([]Requirement, 0, len(required))
	for _, r := range required {
		reqs = append(reqs, Requirement{Key: r.Key, MinLength: r.MinLength, Optional: r.Optional})
	}
	return reqs
}

// CheckRequired resolves every requirement through p, best effort, and
// reports which ones are missing or too short.
func CheckRequired(ctx context.Context, p provider.Provider, reqs []Requirement, logger *logging.Logger) *Result {
	if logger == nil {
		logger = logging.Discard()
	}

	keys := make([]string, 0, len(reqs))
	for _, r := range reqs {
		keys = append(keys, r.Key)
	}

	found, failed := provider.ResolveBestEffort(ctx, p, keys, provider.GetOptions{})

	result := &Result{Valid: true}
	for _, r := range reqs {
		problem := ""

		if err, ok := failed[r.Key]; ok {
			problem = r.Key
			if code := provider.CodeOf(err); code != "" && code != provider.CodeNotFound {
				problem = fmt.Sprintf("%s (lookup failed: %s)", r.Key, code)
			}
		} else if secret := found[r.Key]; secret == nil || secret.Value == "" {
			problem = fmt.Sprintf("%s (empty)", r.Key)
		} else if r.MinLength > 0 && len(secret.Value) < r.MinLength {
			problem = fmt.Sprintf("%s (shorter than %d characters)", r.Key, r.MinLength)
		}

		if problem == "" {
			logger.Debug("Required secret %s present", r.Key)
			continue
		}

		if r.Optional {
			result.Warnings = append(result.Warnings, problem)
			continue
		}

		result.Missing = append(result.Missing, problem)
		result.Valid = false
	}

	return result
}
