package gocoro

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
)

// A TraceFlag turns on a category of verbose logging.
type TraceFlag struct {
	enabled atomic.Bool
}

func (t *TraceFlag) Enabled() bool {
	return t.enabled.Load()
}

var (
	// TraceSwitch logs every switch at info level.
	TraceSwitch TraceFlag
	// TraceStack logs stack region allocation, reuse and high-water marks
	// at info level.
	TraceStack TraceFlag
)

var traceflags = map[string]*TraceFlag{
	"switch": &TraceSwitch,
	"stack":  &TraceStack,
}

func KnownTraceflags() string {
	return strings.Join(slices.Sorted(maps.Keys(traceflags)), ",")
}

// ParseTraceflags enables the comma-separated trace flags in config and
// disables all others.
func ParseTraceflags(config string) error {
	enable := make(map[*TraceFlag]bool)
	for _, name := range strings.Split(config, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		flag, ok := traceflags[name]
		if !ok {
			return fmt.Errorf("unknown traceflag %q (known %s)", name, KnownTraceflags())
		}
		enable[flag] = true
	}

	for _, flag := range traceflags {
		flag.enabled.Store(enable[flag])
	}
	return nil
}
