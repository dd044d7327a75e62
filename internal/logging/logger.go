// Package logging provides the structured logger shared by the CLI and the assembly runner.
// Configuration comes from CILDIS_* environment variables.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	envLevel  = "CILDIS_LOG_LEVEL"
	envPrefix = "CILDIS_LOG_PREFIX"
	envToFile = "CILDIS_LOG_TO_FILE"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// Level maps a level name to a log level. Unknown names give info.
func Level(name string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewLoggerWithWriter creates a logger writing to w with level and prefix from the environment.
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           Level(os.Getenv(envLevel)),
	})

	prefix := os.Getenv(envPrefix)
	if prefix == "" {
		prefix = "cildis "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// NewLogger creates a logger based on environment variables
// CILDIS_LOG_LEVEL: debug, info, warn, error (default: info)
// CILDIS_LOG_PREFIX: prefix for log messages (default: "cildis ")
// CILDIS_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
func NewLogger() *LoggerCloser {
	if os.Getenv(envToFile) == "1" {
		// fall back to stderr when the file cannot be created
		if lg, err := NewFileLogger(""); err == nil {
			return lg
		}
	}
	return NewLoggerWithWriter(os.Stderr)
}

// NewFileLogger logs to a timestamped file in dir, the working directory when dir is empty.
func NewFileLogger(dir string) (*LoggerCloser, error) {
	name := fmt.Sprintf("cildis-%s-debug.log", time.Now().Format("20060102-150405"))
	if dir != "" {
		name = filepath.Join(dir, name)
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return NewLoggerWithWriter(f), nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return Level(os.Getenv(envLevel)) == log.DebugLevel
}
