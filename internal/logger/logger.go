// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). Output is rendered by zerolog's console
// writer. The logger is safe for concurrent use.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// levelVar is the level shared by a logger and every child made by With.
type levelVar struct {
	mu    sync.RWMutex
	level Level
}

// Logger is a leveled printf-style logger. All methods are safe for concurrent use.
type Logger struct {
	lv *levelVar
	zl zerolog.Logger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    out != os.Stderr && out != os.Stdout,
	}

	return &Logger{
		lv: &levelVar{level: level},
		zl: zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
	}
}

// SetLevel changes the log level at runtime, for this logger and all of
// its children.
func (l *Logger) SetLevel(level Level) {
	l.lv.mu.Lock()
	defer l.lv.mu.Unlock()
	l.lv.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.lv.mu.RLock()
	defer l.lv.mu.RUnlock()
	return l.lv.level
}

// With returns a child logger that stamps every line with the given field.
// The child shares its parent's level.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		lv: l.lv,
		zl: l.zl.With().Str(key, value).Logger(),
	}
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	if l.enabled(LevelVerbose) {
		l.zl.Debug().Msgf(format, args...)
	}
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Info().Msgf(format, args...)
	}
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Warn().Msgf(format, args...)
	}
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Error().Msgf(format, args...)
	}
}

func (l *Logger) enabled(min Level) bool {
	return l.GetLevel() >= min
}
