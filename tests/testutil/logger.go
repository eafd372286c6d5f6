package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/secretchain/internal/logging"
)

// TestLogger captures log output for validation in tests.
//
// It wraps a real logging.Logger writing to an in-memory buffer, so tests
// can verify that secrets never reach the logs and that expected messages
// are produced. The buffer is safe for use from watcher goroutines.
//
// Example usage:
//
//	logger := NewTestLogger(t, true)
//	p := providers.NewEnvProvider(providers.EnvConfig{Logger: logger.Logger})
//	...
//	logger.AssertNotContains(t, "abc123")
type TestLogger struct {
	*logging.Logger
	buffer *syncBuffer
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewTestLogger creates a TestLogger. With debug set, Debug messages are
// captured as well.
func NewTestLogger(t *testing.T, debug bool) *TestLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &TestLogger{
		Logger: logging.NewWithWriter(buf, debug, true),
		buffer: buf,
	}
}

// GetOutput returns the captured log output as a string.
func (l *TestLogger) GetOutput() string {
	return l.buffer.String()
}

// Clear clears the captured log output.
func (l *TestLogger) Clear() {
	l.buffer.Reset()
}

// AssertContains asserts that the log output contains the specified substring.
func (l *TestLogger) AssertContains(t *testing.T, substr string) {
	t.Helper()

	assert.Contains(t, l.GetOutput(), substr, "Expected log output to contain %q", substr)
}

// AssertNotContains asserts that the log output does NOT contain the specified substring.
//
// This is particularly useful for verifying that secrets are never logged.
func (l *TestLogger) AssertNotContains(t *testing.T, substr string) {
	t.Helper()

	assert.NotContains(t, l.GetOutput(), substr, "Expected log output to NOT contain %q", substr)
}

// AssertLogCount asserts that a log level appears a certain number of times.
//
// Levels: "info", "warning", "error", "debug".
func (l *TestLogger) AssertLogCount(t *testing.T, level string, count int) {
	t.Helper()

	actual := strings.Count(l.GetOutput(), "level="+level)
	assert.Equal(t, count, actual, "Expected %d %s log messages, got %d", count, level, actual)
}
