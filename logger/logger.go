// Package logger wraps zerolog.Logger with the constructors used by the
// redaction pipeline and its command.
//
// Logger embeds zerolog.Logger so the full zerolog API is available on
// *Logger. Pipeline stages derive child loggers with Stage.
package logger

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// NewLogger returns a JSON logger on os.Stdout for the given role label
// (e.g. "redact-users").
//
// Every entry carries a "role" field, a timestamp, and a "func" caller field
// holding the fully-qualified function name instead of file:line.
func NewLogger(role string) *Logger {
	return New(os.Stdout, role)
}

// New is NewLogger writing to w.
func New(w io.Writer, role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	logger := zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Stage returns a child logger tagged with a "stage" field.
func (l *Logger) Stage(name string) *Logger {
	return &Logger{l.With().Str("stage", name).Logger()}
}

// WithContext stores the logger in ctx for FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx. If none was stored, zerolog
// falls back to its default logger, so the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
