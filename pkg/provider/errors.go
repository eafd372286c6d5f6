package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a ProviderError.
type ErrorCode string

const (
	CodeNotFound             ErrorCode = "SECRET_NOT_FOUND"
	CodeAccessDenied         ErrorCode = "ACCESS_DENIED"
	CodeNetworkError         ErrorCode = "NETWORK_ERROR"
	CodeTimeout              ErrorCode = "TIMEOUT"
	CodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	CodeProviderUnavailable  ErrorCode = "PROVIDER_UNAVAILABLE"
)

// ProviderError is the only error type returned by providers.
//
// Example:
//
//	return nil, &ProviderError{
//	    Message:  fmt.Sprintf("Secret '%s' not found in environment variables", key),
//	    Code:     CodeNotFound,
//	    Provider: TypeEnvVariables,
//	}
type ProviderError struct {
	Message  string
	Code     ErrorCode
	Provider Type
	Cause    error
}

// NewError builds a ProviderError.
func NewError(code ErrorCode, typ Type, cause error, format string, args ...interface{}) *ProviderError {
	return &ProviderError{
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Provider: typ,
		Cause:    cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of the first ProviderError in err's chain, or ""
// when there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND ProviderError.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// ContextError converts a finished context into a ProviderError. It
// returns nil while ctx is still live.
func ContextError(ctx context.Context, typ Type, key string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(CodeTimeout, typ, err, "Timed out resolving secret '%s'", key)
	default:
		return NewError(CodeProviderUnavailable, typ, err, "Resolution of secret '%s' was cancelled", key)
	}
}

// CollectSecrets resolves each key through get and applies the
// discard-on-any-failure policy shared by every provider: a single failed
// key fails the whole call with one NOT_FOUND error naming all failed keys,
// and no partial map is returned.
func CollectSecrets(ctx context.Context, typ Type, keys []string, get func(ctx context.Context, key string) (*SecretValue, error)) (map[string]*SecretValue, error) {
	results := make(map[string]*SecretValue, len(keys))
	var failed []string

	for _, key := range keys {
		value, err := get(ctx, key)
		if err != nil {
			failed = append(failed, key)
			continue
		}
		results[key] = value
	}

	if len(failed) > 0 {
		return nil, &ProviderError{
			Message:  fmt.Sprintf("Failed to load %d secret(s): %s", len(failed), strings.Join(failed, ", ")),
			Code:     CodeNotFound,
			Provider: typ,
		}
	}

	return results, nil
}

// ResolveBestEffort resolves every key through p.GetSecret and returns
// whatever resolved alongside the per-key failures. Unlike
// Provider.GetSecrets, successful keys are never discarded.
func ResolveBestEffort(ctx context.Context, p Provider, keys []string, opts GetOptions) (map[string]*SecretValue, map[string]error) {
	found := make(map[string]*SecretValue, len(keys))
	failed := make(map[string]error)

	for _, key := range keys {
		value, err := p.GetSecret(ctx, key, opts)
		if err != nil {
			failed[key] = err
			continue
		}
		found[key] = value
	}

	return found, failed
}
