package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a Logger writing to stdout. The level is taken from
// LOG_LEVEL when it names a valid logrus level, info otherwise.
func NewLogger() *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	base.SetLevel(logrus.InfoLevel)
	if levelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL")); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			base.SetLevel(level)
		}
	}

	return &Logger{entry: logrus.NewEntry(base)}
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithRun tags every line with the given run id.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{entry: l.entry.WithField("run", id)}
}

// WithField returns a child logger carrying key=value on every line.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}
