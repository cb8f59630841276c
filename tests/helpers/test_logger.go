package helpers

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures log output for assertions. Writes are serialized so
// it can be shared with background goroutines.
type TestLogger struct {
	mu     sync.Mutex
	buffer bytes.Buffer
	Logger *zerolog.Logger
}

func (tl *TestLogger) Write(p []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buffer.Write(p)
}

// NewTestLogger returns a trace-level logger that records everything.
func NewTestLogger() *TestLogger {
	tl := &TestLogger{}
	logger := zerolog.New(tl).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	tl.Logger = &logger
	return tl
}

// NewSilentTestLogger creates a logger that discards all output
func NewSilentTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard).With().Timestamp().Logger()
	return &logger
}

// GetLogOutput returns the captured log output
func (tl *TestLogger) GetLogOutput() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buffer.String()
}

// Reset clears the log buffer
func (tl *TestLogger) Reset() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.buffer.Reset()
}

// ContainsLog reports whether message was logged.
func (tl *TestLogger) ContainsLog(message string) bool {
	return bytes.Contains([]byte(tl.GetLogOutput()), []byte(message))
}

// AssertLogContains fails t unless message was logged.
func (tl *TestLogger) AssertLogContains(t *testing.T, message string) {
	t.Helper()
	if !tl.ContainsLog(message) {
		t.Errorf("Expected log to contain '%s', but got: %s", message, tl.GetLogOutput())
	}
}

// AssertLogLevel fails t unless an entry at level was logged.
func (tl *TestLogger) AssertLogLevel(t *testing.T, level string) {
	t.Helper()
	if !tl.ContainsLog(`"level":"` + level + `"`) {
		t.Errorf("Expected log to contain level '%s', but got: %s", level, tl.GetLogOutput())
	}
}
