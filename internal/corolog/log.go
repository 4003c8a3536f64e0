// Package corolog builds the structured loggers used by gocoro and its
// tools.
package corolog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jellevandenhooff/gocoro/internal/prettylog"
)

// NewLogger returns a JSON logger writing to out at level.
func NewLogger(out io.Writer, level slog.Level) *slog.Logger {
	ho := slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}
	return slog.New(slog.NewJSONHandler(out, &ho))
}

// ParseLevel parses a level name such as "INFO" or "debug".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("bad log level %q: %w", s, err)
	}
	return level, nil
}

// WrapHandler returns a handler that adds the attributes returned by attrs
// to every record at the moment it is handled.
func WrapHandler(inner slog.Handler, attrs func() []slog.Attr) slog.Handler {
	return wrapHandler{inner: inner, attrs: attrs}
}

type wrapHandler struct {
	inner slog.Handler
	attrs func() []slog.Attr
}

func (w wrapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return w.inner.Enabled(ctx, level)
}

func (w wrapHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(w.attrs()...)
	return w.inner.Handle(ctx, r)
}

func (w wrapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return wrapHandler{
		inner: w.inner.WithAttrs(attrs),
		attrs: w.attrs,
	}
}

func (w wrapHandler) WithGroup(name string) slog.Handler {
	return wrapHandler{
		inner: w.inner.WithGroup(name),
		attrs: w.attrs,
	}
}

// Format selects how JSON log lines are shown on a console.
type Format string

const (
	FormatRaw      Format = "raw"
	FormatIndented Format = "indented"
	FormatPretty   Format = "pretty"
)

func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if f != FormatRaw && f != FormatIndented && f != FormatPretty {
		return "", fmt.Errorf("bad log format %q", s)
	}
	return f, nil
}

type indentedWriter struct {
	out io.Writer
}

func (w *indentedWriter) Write(p []byte) (n int, err error) {
	if len(p) > 0 && p[len(p)-1] == '\n' {
		var x any
		if err := json.Unmarshal(p, &x); err == nil {
			o := json.NewEncoder(w.out)
			o.SetIndent("", "  ")
			if err := o.Encode(x); err != nil {
				return 0, err
			}
			return len(p), nil
		}
	}
	return w.out.Write(p)
}

// ConsoleWriter wraps out so JSON log lines written to it are shown in
// format.
func ConsoleWriter(out io.Writer, format Format) io.Writer {
	switch format {
	case FormatRaw:
		return out
	case FormatIndented:
		return &indentedWriter{
			out: out,
		}
	case FormatPretty:
		return prettylog.NewWriter(out)
	default:
		panic(format)
	}
}
