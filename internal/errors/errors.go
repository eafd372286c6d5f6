package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/secretchain/pkg/provider"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// FromProvider turns a provider failure into a UserError with a suggestion
// matching its code. Errors that are not ProviderErrors pass through.
func FromProvider(err error) error {
	if err == nil {
		return nil
	}

	var pe *provider.ProviderError
	if !errors.As(err, &pe) {
		return err
	}

	return UserError{
		Message:    pe.Message,
		Details:    fmt.Sprintf("%s provider, code %s", pe.Provider, pe.Code),
		Suggestion: providerSuggestion(pe),
		Err:        err,
	}
}

// providerSuggestion returns helpful suggestions based on the error code
func providerSuggestion(pe *provider.ProviderError) string {
	switch pe.Code {
	case provider.CodeNotFound:
		if strings.Contains(pe.Message, "Secrets file not found") {
			return "Check SECRETS_FILE_PATH or the fallback 'path' in your configuration"
		}
		return "Export the variable or add the key to the secrets file. List known keys with 'secretchain keys'"
	case provider.CodeInvalidConfiguration:
		if strings.Contains(pe.Message, "secrets file") {
			return "The secrets file must be a flat object of string keys to string values"
		}
		return "Check the 'provider' section of your configuration"
	case provider.CodeAccessDenied:
		return "Check the permissions of the secrets file and of the running user"
	case provider.CodeTimeout:
		return "The lookup timed out. Raise --timeout or check the backing store"
	case provider.CodeNetworkError:
		return "Unable to reach the secret backend. Check your network and provider configuration"
	case provider.CodeProviderUnavailable:
		return "The secret backend is unavailable. Run 'secretchain health' for details"
	}
	return ""
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch provider.CodeOf(err) {
	case provider.CodeTimeout, provider.CodeNetworkError, provider.CodeProviderUnavailable:
		return true
	case "":
	default:
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"resource temporarily unavailable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		return FromProvider(err)
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
