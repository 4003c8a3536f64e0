package corolog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jellevandenhooff/gocoro/internal/corolog"
)

func TestWrapHandlerAddsAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := corolog.NewLogger(&buf, slog.LevelInfo)

	step := 0
	logger := slog.New(corolog.WrapHandler(base.Handler(), func() []slog.Attr {
		step++
		return []slog.Attr{
			slog.String("thread", "main"),
			slog.Int("coroutine", 3),
			slog.Int("step", step),
		}
	}))

	logger.Info("first")
	logger.Debug("hidden")
	logger.With("extra", 1).Warn("second")

	logs := corolog.ParseLog(buf.Bytes())
	expected := []*corolog.Log{
		{Index: 0, Level: slog.LevelInfo, Msg: "first", Thread: "main", Coroutine: 3, Step: 1},
		{Index: 1, Level: slog.LevelWarn, Msg: "second", Thread: "main", Coroutine: 3, Step: 2},
	}
	if diff := cmp.Diff(expected, logs, cmpopts.IgnoreFields(corolog.Log{}, "Time", "Source")); diff != "" {
		t.Error(diff)
	}
	for _, log := range logs {
		if log.Source == nil || !strings.HasSuffix(log.Source.File, "log_test.go") {
			t.Errorf("bad source %+v", log.Source)
		}
	}
}

func TestParseLogSkipsGarbage(t *testing.T) {
	logs := corolog.ParseLog([]byte("not json\n{\"msg\":\"ok\",\"level\":\"ERROR\"}\n\n"))
	if len(logs) != 1 || logs[0].Msg != "ok" || logs[0].Level != slog.LevelError {
		t.Errorf("unexpected logs %+v", logs)
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in       string
		expected slog.Level
		err      bool
	}{
		{in: "INFO", expected: slog.LevelInfo},
		{in: "debug", expected: slog.LevelDebug},
		{in: "ERROR+2", expected: slog.LevelError + 2},
		{in: "loud", err: true},
	}
	for _, tc := range testCases {
		got, err := corolog.ParseLevel(tc.in)
		if (err != nil) != tc.err {
			t.Errorf("parse %q: err %v", tc.in, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("parse %q: got %v, expected %v", tc.in, got, tc.expected)
		}
	}
}

func TestConsoleWriterIndented(t *testing.T) {
	f, err := corolog.ParseFormat("indented")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := corolog.ConsoleWriter(&buf, f)
	w.Write([]byte(`{"a":1}` + "\n"))
	w.Write([]byte("plain\n"))

	if diff := cmp.Diff("{\n  \"a\": 1\n}\nplain\n", buf.String()); diff != "" {
		t.Error(diff)
	}

	if _, err := corolog.ParseFormat("fancy"); err == nil {
		t.Error("expected error for unknown format")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestConsoleWriterIndentedReportsErrors(t *testing.T) {
	w := corolog.ConsoleWriter(failingWriter{}, corolog.FormatIndented)

	for _, line := range []string{`{"a":1}` + "\n", "plain\n"} {
		if _, err := w.Write([]byte(line)); err == nil || err.Error() != "disk full" {
			t.Errorf("writing %q: got %v", line, err)
		}
	}
}

func TestZapWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	z, err := corolog.Zap(corolog.NewLogger(&buf, slog.LevelInfo))
	if err != nil {
		t.Fatal(err)
	}
	z.Info("from zap")
	z.Sync()

	logs := corolog.ParseLog(buf.Bytes())
	if len(logs) != 1 || logs[0].Msg != "from zap" {
		t.Errorf("unexpected logs %q", buf.String())
	}
}
