package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the level and output format of a ZerologLogger.
type Options struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string
	// Format is "json" or "console".
	Format string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	format := "json"
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	l, err := NewWithOptions(component, Options{Level: "info", Format: format})
	if err != nil {
		return NopLogger{}
	}
	return l
}

// NewWithOptions creates a ZerologLogger from explicit options.
func NewWithOptions(component string, opts Options) (*ZerologLogger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		lv, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = lv
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	switch opts.Format {
	case "", "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("unknown log format %s", opts.Format)
	}
	z := zerolog.New(out).Level(level).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}, nil
}

// With returns a child logger for another component sharing the same output.
func (l *ZerologLogger) With(component string) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
