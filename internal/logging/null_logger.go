package logging

import "github.com/miqalab/miqa/pkg/miqa"

// NullLogger discards all log messages. Useful for tests and for callers
// that embed miqa as a library and bring their own logging.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Verbose discards the message.
func (l *NullLogger) Verbose(format string, args ...interface{}) {}

// Info discards the message.
func (l *NullLogger) Info(format string, args ...interface{}) {}

// Warn discards the message.
func (l *NullLogger) Warn(format string, args ...interface{}) {}

// Error discards the message.
func (l *NullLogger) Error(format string, args ...interface{}) {}

// Verify NullLogger implements the Logger interface at compile time
var _ miqa.Logger = (*NullLogger)(nil)
