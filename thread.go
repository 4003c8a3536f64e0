package gocoro

import (
	"context"
	"io"
	"log/slog"

	"github.com/jellevandenhooff/gocoro/internal/corolog"
	"github.com/jellevandenhooff/gocoro/internal/stack"
)

// DefaultStackSize is the stack size used when ThreadConfig.StackSize is
// zero.
const DefaultStackSize = 1 << 20

type (
	StackRange   = stack.Range
	StackTracker = stack.Tracker
	Sanitizer    = stack.Sanitizer
)

// NewStackTracker returns a StackTracker that keeps registered ranges in
// memory and panics on overlap. It may be shared between Threads.
func NewStackTracker() *stack.MemTracker {
	return stack.NewTracker()
}

// NewShadowChecker returns a Sanitizer that panics on unbalanced switch
// notifications. It must not be shared between Threads.
func NewShadowChecker() *stack.ShadowChecker {
	return stack.NewShadowChecker()
}

// ThreadConfig configures a Thread.
type ThreadConfig struct {
	// Name labels the thread in logs. Optional, defaults to "thread".
	Name string
	// StackSize is the size in bytes of every coroutine's stack region,
	// rounded up to a page multiple. Coroutine code executes on its own
	// goroutine stack, which the Go runtime grows as needed; the region is
	// scratch memory handed out by Coroutine.Stack. StackSize therefore
	// bounds that memory, not call depth. Optional, defaults to
	// DefaultStackSize.
	StackSize int
	// PoolSize is the number of deleted coroutines kept for reuse by New.
	PoolSize int
	// MeasureStackUsage poisons new stack regions and logs their
	// high-water mark when they are freed. Only writes through
	// Coroutine.Stack show up; the execution stack is not measured.
	MeasureStackUsage bool
	// Checksum hashes every switch; see Thread.Checksum.
	Checksum bool
	// Logger receives the thread's logs. Optional, defaults to discarding.
	Logger *slog.Logger
	// Tracker, if set, is told about every coroutine stack region.
	Tracker StackTracker
	// Sanitizer, if set, is notified around every switch.
	Sanitizer Sanitizer
}

// A Thread is the registry of coroutines sharing one flow of control: it
// knows which of them runs right now and owns the leader representing the
// code that drives them.
type Thread struct {
	cfg    ThreadConfig
	logger *slog.Logger

	leader  *Coroutine
	current *Coroutine

	nextID int
	live   int
	pool   []*Coroutine
	steps  int
	closed bool

	checksummer *checksummer

	// panicked is set by a terminating coroutine whose entry panicked, for
	// the caller it resumes.
	panicked *PanicError
}

// NewThread returns a new Thread. The calling goroutine becomes the
// thread's leader when the thread is first used.
func NewThread(cfg ThreadConfig) *Thread {
	if cfg.Name == "" {
		cfg.Name = "thread"
	}
	if cfg.StackSize == 0 {
		cfg.StackSize = DefaultStackSize
	}
	base := cfg.Logger
	if base == nil {
		base = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	t := &Thread{
		cfg:    cfg,
		nextID: 1,
	}
	t.logger = slog.New(corolog.WrapHandler(base.Handler(), t.logAttrs))
	if cfg.Checksum {
		t.checksummer = newChecksummer(t.logger)
	}
	return t
}

func (t *Thread) logAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("thread", t.cfg.Name),
		slog.Int("step", t.steps),
	}
	if t.current != nil {
		attrs = append(attrs, slog.Int("coroutine", t.current.id))
	}
	return attrs
}

// Self returns the coroutine currently running on t, materializing the
// leader on first use.
func (t *Thread) Self() *Coroutine {
	if t.current == nil {
		t.leader = &Coroutine{
			thread: t,
			state:  StateRunning,
			leader: true,
		}
		t.leader.ctx.InitBorrowed()
		t.current = t.leader
	}
	return t.current
}

// InCoroutine reports whether the caller runs inside a coroutine entered
// from somewhere else, as opposed to the leader.
func (t *Thread) InCoroutine() bool {
	return t.Self().caller != nil
}

// Leader returns the thread's leader.
func (t *Thread) Leader() *Coroutine {
	t.Self()
	return t.leader
}

// Checksum returns a hash over every coroutine creation, switch and
// deletion so far. It returns nil unless ThreadConfig.Checksum is set.
func (t *Thread) Checksum() []byte {
	if t.checksummer == nil {
		return nil
	}
	return t.checksummer.sum()
}

// Live returns the number of coroutines created and not yet freed, pooled
// ones included.
func (t *Thread) Live() int {
	return t.live
}

// Close frees all pooled coroutines. It must be called from the leader.
// Coroutines still alive afterwards are logged and stay usable until
// deleted, but New panics.
func (t *Thread) Close() {
	if t.Self() != t.leader {
		panic("gocoro: Close called from inside a coroutine")
	}
	if t.closed {
		panic("gocoro: thread closed twice")
	}
	t.closed = true

	for _, co := range t.pool {
		t.free(co)
	}
	t.pool = nil

	if t.live > 0 {
		t.logger.Warn("closing thread with live coroutines", "live", t.live)
	}
}

func (t *Thread) nextCoroutineID() int {
	id := t.nextID
	t.nextID++
	return id
}

func (t *Thread) debugEnabled() bool {
	return t.logger.Enabled(context.TODO(), slog.LevelDebug)
}
