//go:build linkname

package coro

import (
	"unsafe"

	"github.com/jellevandenhooff/gocoro/internal/race"
)

const Backend = "linkname"

type coro struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coro)) *coro

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coro)

//go:linkname coroexit runtime.coroexit
func coroexit(*coro)

// A Context is a goroutine blocked in a runtime coro. Every runtime coro
// always has exactly one goroutine blocked in it; switching through a coro
// swaps the caller in for that goroutine. parked is the coro currently
// holding this Context's goroutine, or nil while it runs.
type Context struct {
	parked *coro
	action int
	exit   bool
	exitTo *coro
}

// The race detector does not know that coroswitch hands control from one
// goroutine to the next. Every switch releases on the target Context and
// the resumed goroutine acquires on its own Context.

// Init prepares c to run entry in a new runtime coroutine the first time it
// is switched to. entry receives the action of that first switch and must
// never return; it leaves only through Switch or Destroy.
func (c *Context) Init(entry func(action int)) {
	c.parked = newcoro(func(*coro) {
		race.Acquire(unsafe.Pointer(c))
		if c.exit {
			race.ReleaseMerge(unsafe.Pointer(c))
			coroexit(c.exitTo)
		}
		entry(c.action)
		panic("coro: entry returned")
	})
}

// InitBorrowed prepares c for the goroutine calling it.
func (c *Context) InitBorrowed() {}

// Switch saves the caller into from and resumes to with action.
//
//go:norace
func Switch(from, to *Context, action int) int {
	via := to.parked
	to.parked = nil
	to.action = action
	from.parked = via
	race.ReleaseMerge(unsafe.Pointer(to))
	coroswitch(via)
	race.Acquire(unsafe.Pointer(from))
	if from.exit {
		race.ReleaseMerge(unsafe.Pointer(from))
		coroexit(from.exitTo)
	}
	return from.action
}

// Destroy ends the goroutine parked in c without running its deferred
// calls. Destroy must only be used on Contexts set up with Init.
//
//go:norace
func Destroy(from, c *Context) {
	via := c.parked
	c.parked = nil
	c.exit = true
	c.exitTo = via
	race.ReleaseMerge(unsafe.Pointer(c))
	coroswitch(via)
	race.Acquire(unsafe.Pointer(c))
	from.parked = nil
}
