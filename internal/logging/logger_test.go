package logging

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSecretRedaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "secret is redacted",
			input:    "my-secret-password",
			expected: "[REDACTED]",
		},
		{
			name:     "empty secret is still redacted",
			input:    "",
			expected: "[REDACTED]",
		},
		{
			name:     "complex secret is redacted",
			input:    "password123!@#",
			expected: "[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Secret(tt.input).String())
			assert.Equal(t, tt.expected, Secret(tt.input).GoString())
		})
	}
}

func TestLoggerDebugMode(t *testing.T) {
	var buf bytes.Buffer
	quiet := NewWithWriter(&buf, false, true)
	quiet.Debug("hidden %s", "message")
	assert.Empty(t, buf.String())
	assert.False(t, quiet.DebugEnabled())

	verbose := NewWithWriter(&buf, true, true)
	verbose.Debug("visible %s", "message")
	assert.Contains(t, buf.String(), "visible message")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, true, true)

	logger.Info("formatted %s message", "info")
	logger.Warn("formatted %s message", "warn")
	logger.Error("formatted %s message", "error")

	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "formatted warn message")
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, false, true).With("provider", "file")

	logger.Info("reloaded")
	assert.Contains(t, buf.String(), "provider=file")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
	assert.NotNil(t, logger)
}

func TestRedactFunction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		secrets  []string
		expected string
	}{
		{
			name:     "single secret redacted",
			input:    "The password is secret123",
			secrets:  []string{"secret123"},
			expected: "The password is [REDACTED]",
		},
		{
			name:     "multiple secrets redacted",
			input:    "User admin with password secret123 and API key abc123",
			secrets:  []string{"admin", "secret123", "abc123"},
			expected: "User [REDACTED] with password [REDACTED] and API key [REDACTED]",
		},
		{
			name:     "no secrets to redact",
			input:    "This has no secrets",
			secrets:  []string{},
			expected: "This has no secrets",
		},
		{
			name:     "short secret ignored",
			input:    "Short secret: ab",
			secrets:  []string{"ab"},
			expected: "Short secret: ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Redact(tt.input, tt.secrets))
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "not_set"},
		{name: "short", input: "abc", want: "***masked***"},
		{name: "seven_chars", input: "abcdefg", want: "***masked***"},
		{name: "eight_chars", input: "abcdefgh", want: "abcdefgh"},
		{name: "long", input: "sk-live-1234567890", want: "sk-l**********7890"},
		{name: "multibyte", input: "pässwörd-geheim", want: "päss*******heim"},
		{name: "cjk", input: "日本語のパスワード", want: "日本語の*スワード"},
		{name: "four_multibyte_runes", input: "ääää", want: "***masked***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
