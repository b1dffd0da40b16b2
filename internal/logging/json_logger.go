package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// JSONLogger emits structured log lines through zerolog.
// Verbose maps to the debug level.
type JSONLogger struct {
	log zerolog.Logger
}

// NewJSONLogger returns a JSON logger on stderr.
func NewJSONLogger(verbose bool) *JSONLogger {
	return NewJSONLoggerTo(os.Stderr, verbose)
}

// NewJSONLoggerTo returns a JSON logger writing to w.
func NewJSONLoggerTo(w io.Writer, verbose bool) *JSONLogger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return &JSONLogger{
		log: zerolog.New(w).Level(level).With().Timestamp().Str("app", "bssimport").Logger(),
	}
}

// With returns a child logger that adds key=value to every line.
func (l *JSONLogger) With(key, value string) *JSONLogger {
	return &JSONLogger{log: l.log.With().Str(key, value).Logger()}
}

func (l *JSONLogger) Verbose(format string, args ...interface{}) {
	l.log.Debug().Msg(sprintf(format, args))
}

func (l *JSONLogger) Info(format string, args ...interface{}) {
	l.log.Info().Msg(sprintf(format, args))
}

func (l *JSONLogger) Error(format string, args ...interface{}) {
	l.log.Error().Msg(sprintf(format, args))
}

func sprintf(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
