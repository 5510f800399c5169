// Package logger wraps logrus for structured logging across the engine.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus entry so packages do not depend on logrus directly.
type Logger struct {
	*logrus.Entry
}

// New creates a logger on the standard logrus logger.
func New() *Logger {
	return &Logger{Entry: logrus.NewEntry(logrus.StandardLogger())}
}

// SetLevel applies a textual level (debug, info, warn, error) to the
// standard logger. Unknown levels fall back to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// WithField adds a field to the logger.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithFields adds multiple fields to the logger.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithFields(fields)}
}
