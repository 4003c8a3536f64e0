package gocoro

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/jellevandenhooff/gocoro/internal/coro"
	"github.com/jellevandenhooff/gocoro/internal/stack"
)

// Backend names the switch implementation compiled in: "chan", or
// "linkname" when built with the linkname tag.
const Backend = coro.Backend

// An EntryFunc is the function a coroutine runs, called with the argument
// given to New.
type EntryFunc func(arg any)

// A Coroutine is a handle to a coroutine of a Thread.
type Coroutine struct {
	id     int
	thread *Thread

	entry EntryFunc
	arg   any

	ctx   coro.Context
	stack *stack.Stack // nil for the leader

	// caller is the coroutine that entered this one and waits for it to
	// yield or terminate, or nil.
	caller *Coroutine
	state  State
	leader bool
	// exited is set once the entry called runtime.Goexit. The coroutine
	// can no longer run any entry.
	exited bool
}

// ID returns the coroutine's identity, unique within its Thread. The
// leader is 0.
func (co *Coroutine) ID() int {
	return co.id
}

func (co *Coroutine) State() State {
	return co.state
}

func (co *Coroutine) Thread() *Thread {
	return co.thread
}

// Stack returns the coroutine's stack region, scratch memory owned by the
// coroutine and meant to be used from the top down. The coroutine's code
// does not execute on it. It returns nil for the leader.
func (co *Coroutine) Stack() []byte {
	if co.stack == nil {
		return nil
	}
	return co.stack.Bytes()
}

func (co *Coroutine) String() string {
	if co.leader {
		return "leader"
	}
	return fmt.Sprintf("coroutine %d (%s)", co.id, co.state)
}

func (co *Coroutine) stackRange() stack.Range {
	if co.stack == nil {
		return stack.Range{}
	}
	return co.stack.Range()
}

func entryName(entry EntryFunc) string {
	return runtime.FuncForPC(reflect.ValueOf(entry).Pointer()).Name()
}

// New returns a coroutine that will run entry(arg) when first entered. No
// code of entry runs before then. New reuses a pooled coroutine if there
// is one and otherwise allocates a stack; failing to do so panics.
func (t *Thread) New(entry EntryFunc, arg any) *Coroutine {
	if entry == nil {
		panic("gocoro: New with nil entry")
	}
	if t.closed {
		panic("gocoro: New on closed thread")
	}
	creator := t.Self()

	if n := len(t.pool); n > 0 {
		co := t.pool[n-1]
		t.pool = t.pool[:n-1]
		co.id = t.nextCoroutineID()
		co.entry = entry
		co.arg = arg
		co.state = StateUnstarted
		if t.checksummer != nil {
			t.checksummer.record(checksumKeyRecycle, uint64(co.id), 0, 0)
		}
		if TraceStack.Enabled() {
			t.logger.Info("reusing stack", "child", co.id, "size", co.stack.Size())
		}
		return co
	}

	s, err := stack.Allocate(t.cfg.StackSize, stack.Options{
		Poison:  t.cfg.MeasureStackUsage,
		Tracker: t.cfg.Tracker,
	})
	if err != nil {
		panic(fmt.Errorf("gocoro: %w", err))
	}
	co := &Coroutine{
		id:     t.nextCoroutineID(),
		thread: t,
		entry:  entry,
		arg:    arg,
		stack:  s,
		state:  StateUnstarted,
	}
	t.live++
	if t.checksummer != nil {
		t.checksummer.record(checksumKeyCreate, uint64(co.id), uint64(s.Size()), 0)
	}
	if t.debugEnabled() {
		t.logger.Debug("creating coroutine", "child", co.id, "entry", entryName(entry))
	}
	if TraceStack.Enabled() {
		t.logger.Info("allocated stack", "child", co.id, "base", s.Base(), "size", s.Size(), "guarded", s.Guarded())
	}

	co.ctx.Init(co.trampoline)
	co.caller = creator
	t.switchTo(creator, co, ActionEnter)
	return co
}

// Switch hands control from the current coroutine to to, passing action.
// It returns once the current coroutine is resumed, with the action of the
// switch that resumed it.
//
// If to is the current coroutine's caller, the current coroutine suspends
// and its caller link is cleared. Otherwise to is entered: it must be
// unstarted or suspended, and the current coroutine becomes its caller.
//
// When the resuming coroutine's entry panicked, Switch panics with a
// *PanicError.
func (t *Thread) Switch(to *Coroutine, action Action) Action {
	from := t.Self()
	if to.thread != t {
		panic(fmt.Sprintf("gocoro: switching from %s of thread %q to %s of thread %q", from, t.cfg.Name, to, to.thread.cfg.Name))
	}

	switch {
	case to == from:
		panic(fmt.Sprintf("gocoro: %s switching to itself", from))
	case to == from.caller:
		from.caller = nil
		if from.state == StateRunning {
			from.state = StateSuspended
		}
	default:
		switch to.state {
		case StateUnstarted, StateSuspended:
		case StateRunning:
			panic(fmt.Sprintf("gocoro: entering %s which is already running", to))
		default:
			panic(fmt.Sprintf("gocoro: entering %s", to))
		}
		to.caller = from
		to.state = StateRunning
	}

	result := t.switchTo(from, to, action)

	if p := t.panicked; p != nil {
		t.panicked = nil
		t.logger.Error("uncaught panic in coroutine",
			"child", p.Coroutine,
			"panic", fmt.Sprint(p.Value),
			"traceback", strings.Split(strings.ReplaceAll(string(p.Stack), "\t", "  "), "\n"))
		panic(p)
	}
	return result
}

// Enter switches to co with ActionEnter.
func (t *Thread) Enter(co *Coroutine) Action {
	return t.Switch(co, ActionEnter)
}

// Yield switches from the current coroutine back to its caller. It panics
// when called from the leader.
func (t *Thread) Yield(action Action) Action {
	self := t.Self()
	if self.caller == nil {
		panic(fmt.Sprintf("gocoro: %s yielding without a caller", self))
	}
	return t.Switch(self.caller, action)
}

// switchTo performs the low-level switch and keeps the registry current.
func (t *Thread) switchTo(from, to *Coroutine, action Action) Action {
	t.current = to
	t.steps++
	if t.checksummer != nil {
		t.checksummer.record(checksumKeySwitch, uint64(from.id), uint64(to.id), uint64(action))
	}
	if TraceSwitch.Enabled() {
		t.logger.Info("switch", "from", from.id, "to", to.id, "action", action.String())
	}

	if san := t.cfg.Sanitizer; san != nil {
		san.StartSwitch(to.stackRange())
	}
	result := Action(coro.Switch(&from.ctx, &to.ctx, int(action)))
	if san := t.cfg.Sanitizer; san != nil {
		san.FinishSwitch(from.stackRange())
	}
	return result
}

// trampoline is the first code every coroutine runs. It returns to the
// creator right away so New can hand out a coroutine that has not run
// anything yet, and then runs one entry per incarnation of the coroutine.
func (co *Coroutine) trampoline(int) {
	t := co.thread
	if san := t.cfg.Sanitizer; san != nil {
		san.FinishSwitch(co.stackRange())
	}

	creator := co.caller
	co.caller = nil
	t.switchTo(co, creator, ActionYield)

	for {
		p := co.run()

		co.state = StateTerminated
		t.panicked = p
		caller := co.caller
		co.caller = nil
		t.switchTo(co, caller, ActionTerminate)
	}
}

// run calls the entry function, catching panics and runtime.Goexit.
func (co *Coroutine) run() (p *PanicError) {
	returned := false
	defer func() {
		if returned || co.state == StateDeleted {
			return
		}
		if r := recover(); r != nil {
			p = &PanicError{Coroutine: co.id, Value: r, Stack: debug.Stack()}
			return
		}

		// The goroutine is exiting and cannot run anything else. Report
		// to the caller and stay parked until deleted.
		t := co.thread
		co.exited = true
		co.state = StateTerminated
		t.panicked = &PanicError{Coroutine: co.id, Value: ErrGoexit, Stack: debug.Stack()}
		caller := co.caller
		co.caller = nil
		t.switchTo(co, caller, ActionTerminate)
	}()

	entry, arg := co.entry, co.arg
	co.entry, co.arg = nil, nil
	entry(arg)
	returned = true
	return nil
}

// Delete releases co. co must not be running, which includes being the
// caller of the running coroutine. A suspended coroutine is abandoned; what
// happens to its pending deferred calls depends on the switch backend.
//
// Unstarted and terminated coroutines go to the thread's pool if it has
// room, to be handed out again by New. co must not be used after Delete.
func (t *Thread) Delete(co *Coroutine) {
	if co.thread != t {
		panic(fmt.Sprintf("gocoro: deleting %s of thread %q from thread %q", co, co.thread.cfg.Name, t.cfg.Name))
	}
	if co.leader {
		panic("gocoro: deleting the leader")
	}
	switch co.state {
	case StateRunning:
		panic(fmt.Sprintf("gocoro: deleting %s", co))
	case StateDeleted:
		panic(fmt.Sprintf("gocoro: deleting coroutine %d twice", co.id))
	}

	poolable := (co.state == StateUnstarted || co.state == StateTerminated) && !co.exited
	if poolable && !t.closed && len(t.pool) < t.cfg.PoolSize {
		co.state = StateDeleted
		co.entry, co.arg = nil, nil
		t.pool = append(t.pool, co)
		if t.checksummer != nil {
			t.checksummer.record(checksumKeyDelete, uint64(co.id), 1, 0)
		}
		return
	}
	if t.checksummer != nil {
		t.checksummer.record(checksumKeyDelete, uint64(co.id), 0, 0)
	}
	t.free(co)
}

// free destroys co's context and releases its stack.
func (t *Thread) free(co *Coroutine) {
	co.state = StateDeleted
	co.entry, co.arg = nil, nil
	coro.Destroy(&t.Self().ctx, &co.ctx)

	if used := co.stack.Used(); used >= 0 {
		level := slog.LevelDebug
		if TraceStack.Enabled() {
			level = slog.LevelInfo
		}
		t.logger.Log(context.TODO(), level, "coroutine scratch usage", "child", co.id, "used", used, "size", co.stack.Size())
	}
	if err := co.stack.Release(); err != nil {
		panic(fmt.Errorf("gocoro: freeing coroutine %d: %w", co.id, err))
	}
	t.live--
}
