/*
Package gocoro is a cooperative coroutine runtime.

A Coroutine runs only when some other coroutine explicitly switches to it.
Its code executes on a goroutine stack that the Go runtime grows on demand,
so call depth is limited only by the runtime's maximum stack size. Every
coroutine also owns a fixed-size, guard-paged stack region (Coroutine.Stack)
for explicit scratch use; the ThreadConfig stack size and usage measurement
apply to that region only.

Every coroutine belongs to a Thread, which tracks the coroutine currently
running and provides the thread's leader: the implicit coroutine standing
for the code that created the Thread, running on a stack it does not own.

	t := gocoro.NewThread(gocoro.ThreadConfig{})
	defer t.Close()

	co := t.New(func(arg any) {
		t.Yield(10)
		t.Yield(20)
	}, nil)
	t.Enter(co) // 10
	t.Enter(co) // 20
	t.Enter(co) // ActionTerminate
	t.Delete(co)

Control only moves at Switch (and its Enter and Yield shorthands). Each
switch carries an Action that the switch it unblocks returns unchanged, so
coroutines can tell why they were resumed. Entering a coroutine makes the
current coroutine its caller; yielding hands control back to the caller and
clears the link. When the entry function returns, the caller is resumed with
ActionTerminate and the coroutine cannot be entered again until it is
deleted and recycled by New.

Threads are independent and may run in parallel on different goroutines,
but a Thread and its coroutines must only be used from the coroutines of
that Thread. Usage errors such as entering a terminated coroutine or
deleting the running one panic.
*/
package gocoro
