package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// InitDefault sets the process-wide logger. Only the first call has effect.
func InitDefault(level string) *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stdout, level)
	})
	return defaultLogger
}

// Default returns the process-wide logger, creating an info-level one on
// first use when InitDefault was never called.
func Default() *Logger {
	return InitDefault("info")
}

func New(w io.Writer, level string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	zl := zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(level))

	return &Logger{zl: zl}
}

// Nop discards everything. Handy for tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

func (l *Logger) Debug(msg string) {
	l.zl.Debug().Msg(msg)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

func (l *Logger) Errorf(err error, format string, v ...interface{}) {
	l.zl.Error().Err(err).Msgf(format, v...)
}

func (l *Logger) Fatal(err error, msg string) {
	l.zl.Fatal().Err(err).Msg(msg)
}
