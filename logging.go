package tracklight

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
)

// Logger is a minimal printf-style logging interface, compatible with the
// standard library log.Logger.
type Logger interface {
	// Printf logs a formatted message.
	Printf(format string, v ...any)
}

// StructuredLogger provides leveled logging with key-value pairs. This is
// the preferred logging interface; adapters are provided for slog
// (NewSlogAdapter), zerolog (NewZerologAdapter) and zap (NewZapAdapter).
type StructuredLogger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// slogAdapter adapts a *slog.Logger to StructuredLogger.
type slogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps a *slog.Logger as a StructuredLogger.
func NewSlogAdapter(logger *slog.Logger) StructuredLogger {
	return &slogAdapter{logger: logger}
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// zerologAdapter adapts a zerolog.Logger to StructuredLogger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps a zerolog.Logger as a StructuredLogger.
func NewZerologAdapter(logger zerolog.Logger) StructuredLogger {
	return &zerologAdapter{logger: logger}
}

func (a *zerologAdapter) Debug(msg string, args ...any) { emitZerolog(a.logger.Debug(), msg, args) }
func (a *zerologAdapter) Info(msg string, args ...any)  { emitZerolog(a.logger.Info(), msg, args) }
func (a *zerologAdapter) Warn(msg string, args ...any)  { emitZerolog(a.logger.Warn(), msg, args) }
func (a *zerologAdapter) Error(msg string, args ...any) { emitZerolog(a.logger.Error(), msg, args) }

func emitZerolog(e *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

// zapAdapter adapts a *zap.Logger to StructuredLogger.
type zapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter wraps a *zap.Logger as a StructuredLogger.
func NewZapAdapter(logger *zap.Logger) StructuredLogger {
	return &zapAdapter{logger: logger.Sugar()}
}

func (a *zapAdapter) Debug(msg string, args ...any) { a.logger.Debugw(msg, args...) }
func (a *zapAdapter) Info(msg string, args ...any)  { a.logger.Infow(msg, args...) }
func (a *zapAdapter) Warn(msg string, args ...any)  { a.logger.Warnw(msg, args...) }
func (a *zapAdapter) Error(msg string, args ...any) { a.logger.Errorw(msg, args...) }

// printfLoggerWrapper wraps a printf-style logger to implement
// StructuredLogger. All messages are logged at the same level with
// formatted key-value pairs appended.
type printfLoggerWrapper struct {
	logger Logger
}

// WrapPrintfLogger wraps a printf-style Logger (like *log.Logger) to
// implement StructuredLogger.
func WrapPrintfLogger(l Logger) StructuredLogger {
	return &printfLoggerWrapper{logger: l}
}

// WrapStdLogger wraps a standard library *log.Logger to implement
// StructuredLogger. Equivalent to WrapPrintfLogger(l).
func WrapStdLogger(l *log.Logger) StructuredLogger {
	return &printfLoggerWrapper{logger: l}
}

func (w *printfLoggerWrapper) Debug(msg string, args ...any) { w.print("DEBUG", msg, args) }
func (w *printfLoggerWrapper) Info(msg string, args ...any)  { w.print("INFO", msg, args) }
func (w *printfLoggerWrapper) Warn(msg string, args ...any)  { w.print("WARN", msg, args) }
func (w *printfLoggerWrapper) Error(msg string, args ...any) { w.print("ERROR", msg, args) }

func (w *printfLoggerWrapper) print(level, msg string, args []any) {
	w.logger.Printf("[%s] %s%s", level, msg, formatArgs(args))
}

// formatArgs formats key-value pairs as " k=v k=v" for printf loggers.
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}
