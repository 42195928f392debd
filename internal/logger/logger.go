package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ecobot/internal/config"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    zerolog.Logger
	warningLog zerolog.Logger
	errorLog   zerolog.Logger
	files      []*os.File
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) (*Logger, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{}
	infoFile, err := l.openLogFile(filepath.Join(config.LogDirectory, "info.log"))
	if err != nil {
		return nil, err
	}
	warningFile, err := l.openLogFile(filepath.Join(config.LogDirectory, "warning.log"))
	if err != nil {
		l.Close()
		return nil, err
	}
	errorFile, err := l.openLogFile(filepath.Join(config.LogDirectory, "error.log"))
	if err != nil {
		l.Close()
		return nil, err
	}

	stdout := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	stderr := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}

	l.setupLoggers(
		zerolog.MultiLevelWriter(stdout, infoFile),
		zerolog.MultiLevelWriter(stdout, warningFile),
		zerolog.MultiLevelWriter(stderr, errorFile),
		parseLevel(config.LogLevel),
	)
	return l, nil
}

// New builds a Logger that writes every level to w.
func New(w io.Writer) *Logger {
	l := &Logger{}
	l.setupLoggers(w, w, w, zerolog.InfoLevel)
	return l
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return New(io.Discard)
}

func (l *Logger) setupLoggers(info, warning, errw io.Writer, level zerolog.Level) {
	l.infoLog = zerolog.New(info).Level(level).With().Timestamp().Logger()
	l.warningLog = zerolog.New(warning).Level(level).With().Timestamp().Logger()
	l.errorLog = zerolog.New(errw).Level(level).With().Timestamp().Logger()
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filename, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.infoLog.Debug().Msgf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Info().Msgf(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.warningLog.Warn().Msgf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Error().Msgf(format, v...)
}

// Close releases the log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
