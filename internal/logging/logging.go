package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Fields carries structured context for a log entry.
type Fields map[string]interface{}

// Logger is a component-scoped structured logger.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger tagged with the given component name.
func NewLogger(component string) *Logger {
	zl := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("component", component).
		Logger()
	return &Logger{zl: zl}
}

// SetGlobalLevel sets the process-wide log level from a string
// ("debug", "info", "warn", "error"). Unknown values leave the level as-is.
func SetGlobalLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...Fields) {
	l.emit(l.zl.Error(), msg, fields)
}

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(msg string, fields ...Fields) {
	l.emit(l.zl.Fatal(), msg, fields)
}

func (l *Logger) emit(ev *zerolog.Event, msg string, fields []Fields) {
	for _, f := range fields {
		for k, v := range f {
			ev = ev.Interface(k, v)
		}
	}
	ev.Msg(msg)
}
