// Package prettylog renders JSON log lines for humans.
//
// Well-known fields come first in a fixed order (step, thread/coroutine,
// time, level, source, message), followed by the remaining fields sorted by
// name with "err" first. A "traceback" field holding a list of strings is
// printed below the line, one entry per line.
package prettylog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35
	colorCyan    = 36

	colorBold     = 1
	colorDarkGray = 90
)

const (
	errorKey     = "err"
	tracebackKey = "traceback"
	timeFormat   = "15:04:05.000"
)

// Writer turns each JSON line written to it into one formatted line on out.
type Writer struct {
	out   io.Writer
	color bool
}

// NewWriter returns a Writer for out. Colors are used when out is a
// terminal, unless NO_COLOR is set or TERM is dumb; FORCE_COLOR forces them.
func NewWriter(out io.Writer) *Writer {
	color := false
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		color = false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		color = true
	}
	return &Writer{out: out, color: color}
}

func (w *Writer) Write(p []byte) (int, error) {
	var evt map[string]any
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	if err := d.Decode(&evt); err != nil {
		w.out.Write(p)
		return len(p), fmt.Errorf("cannot decode log line: %w", err)
	}

	var parts []string
	if step, ok := evt["step"]; ok {
		parts = append(parts, fmt.Sprintf("%5v", step))
	}
	if thread, ok := evt["thread"]; ok {
		parts = append(parts, fmt.Sprintf("%-10s", fmt.Sprintf("%v/%v", thread, evt["coroutine"])))
	}
	if ts, ok := evt[slog.TimeKey].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ts = parsed.UTC().Format(timeFormat)
		}
		parts = append(parts, w.colorize(ts, colorDarkGray))
	}
	parts = append(parts, w.level(evt[slog.LevelKey]))
	if src := w.source(evt[slog.SourceKey]); src != "" {
		parts = append(parts, src)
	}
	if msg, ok := evt[slog.MessageKey].(string); ok && msg != "" {
		parts = append(parts, w.colorize(msg, colorBold))
	}
	parts = append(parts, w.fields(evt)...)

	var buf bytes.Buffer
	buf.WriteString(strings.Join(parts, " "))
	buf.WriteByte('\n')
	if lines, ok := evt[tracebackKey].([]any); ok {
		for _, line := range lines {
			fmt.Fprintf(&buf, "    %v\n", line)
		}
	}
	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *Writer) fields(evt map[string]any) []string {
	var names []string
	for name := range evt {
		switch name {
		case "step", "thread", "coroutine", tracebackKey, slog.TimeKey, slog.LevelKey, slog.SourceKey, slog.MessageKey:
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	if i := slices.Index(names, errorKey); i > 0 {
		names = slices.Insert(slices.Delete(names, i, i+1), 0, errorKey)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		var value string
		switch v := evt[name].(type) {
		case string:
			value = v
			if needsQuote(v) {
				value = strconv.Quote(v)
			}
		case json.Number:
			value = v.String()
		default:
			b, err := json.Marshal(v)
			if err != nil {
				value = w.colorize(fmt.Sprintf("[error: %v]", err), colorRed)
			} else {
				value = string(b)
			}
		}
		if name == errorKey {
			value = w.colorize(value, colorBold, colorRed)
		}
		out = append(out, w.colorize(name+"=", colorCyan)+value)
	}
	return out
}

func needsQuote(s string) bool {
	for i := range s {
		if s[i] < 0x20 || s[i] > 0x7e || s[i] == ' ' || s[i] == '\\' || s[i] == '"' {
			return true
		}
	}
	return s == ""
}

var levels = map[slog.Level]struct {
	name  string
	color int
}{
	slog.LevelDebug: {"DBG", colorMagenta},
	slog.LevelInfo:  {"INF", colorGreen},
	slog.LevelWarn:  {"WRN", colorYellow},
	slog.LevelError: {"ERR", colorRed},
}

func (w *Writer) level(i any) string {
	s, ok := i.(string)
	if !ok {
		return "???"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err == nil {
		if l, ok := levels[level]; ok {
			return w.colorize(l.name, l.color)
		}
	}
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}

func (w *Writer) source(i any) string {
	m, ok := i.(map[string]any)
	if !ok {
		return ""
	}
	file, _ := m["file"].(string)
	line, _ := m["line"].(json.Number)
	if file == "" {
		return ""
	}
	short := fmt.Sprintf("%s/%s:%s", path.Base(path.Dir(file)), path.Base(file), line)
	return w.colorize(short, colorDarkGray) + w.colorize(" >", colorCyan)
}

func (w *Writer) colorize(s string, colors ...int) string {
	if !w.color {
		return s
	}
	for _, c := range colors {
		s = fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
	}
	return s
}
