package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}

type Type int

const (
	TypeText Type = iota
	TypeJSON
)

// ParseType maps a format name ("text" or "json") to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "text", "":
		return TypeText, nil
	case "json":
		return TypeJSON, nil
	default:
		return TypeText, fmt.Errorf("unknown log format %q", name)
	}
}

type Options struct {
	Buffer io.Writer
	Level  Level
	Type   Type
}

var DefaultLogger = New(Options{os.Stderr, DefaultLevel, TypeText})

// Nop discards everything. Components fall back to it when no logger is
// configured.
var Nop Logger = &logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

type logger struct {
	*slog.Logger
}

func New(opts Options) Logger {
	if opts.Buffer == nil {
		opts.Buffer = os.Stderr
	}
	var handler slog.Handler
	switch opts.Type {
	case TypeJSON:
		handler = slog.NewJSONHandler(opts.Buffer, &slog.HandlerOptions{
			Level: levels[opts.Level],
		})
	case TypeText:
		fallthrough
	default:
		handler = slog.NewTextHandler(opts.Buffer, &slog.HandlerOptions{
			Level: levels[opts.Level],
		})
	}
	return &logger{
		Logger: slog.New(handler),
	}
}

func (l *logger) With(args ...any) Logger {
	return &logger{Logger: l.Logger.With(args...)}
}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}
