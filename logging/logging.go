package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LevelTrace is the level of statement text and DDL messages. It is below
// slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// Level represents logging verbosity.
type Level string

const (
	Trace Level = "trace"
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// Slog returns the slog level of l. Unknown levels map to slog.LevelInfo.
func (l Level) Slog() slog.Level {
	switch Level(strings.ToLower(string(l))) {
	case Trace:
		return LevelTrace
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Valid reports if l names a known level. The empty level is valid.
func (l Level) Valid() bool {
	switch Level(strings.ToLower(string(l))) {
	case "", Trace, Debug, Info, Warn, Error:
		return true
	}
	return false
}

// Config holds logger configuration.
type Config struct {
	Level  Level  `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // Empty or "stdout", "stderr", or a file path
}

// Validate checks the configuration without opening any output.
func (c Config) Validate() error {
	if !c.Level.Valid() {
		return fmt.Errorf("logging: unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
}

// New builds a logger from the configuration. The returned closer releases
// the log file, if one was opened; it is never nil.
//
//	log, closer, err := logging.New(logging.Config{
//	    Level:  logging.Debug,
//	    Format: "json",
//	    Output: "logs/litedao.log",
//	})
func New(c Config) (*slog.Logger, io.Closer, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	switch c.Output {
	case "", "stdout":
	case "stderr":
		w = os.Stderr
	default:
		if err := os.MkdirAll(filepath.Dir(c.Output), 0o750); err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		w, closer = f, f
	}
	return NewWriter(w, c), closer, nil
}

// NewWriter builds a logger writing to w with the level and format of c.
func NewWriter(w io.Writer, c Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: c.Level.Slog(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// Tracef logs a formatted message at LevelTrace.
func Tracef(ctx context.Context, l *slog.Logger, format string, args ...any) {
	if !l.Enabled(ctx, LevelTrace) {
		return
	}
	l.Log(ctx, LevelTrace, fmt.Sprintf(format, args...))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
