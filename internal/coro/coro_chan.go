//go:build !linkname

package coro

import "runtime"

const Backend = "chan"

// A Context is a goroutine that only runs while it holds the hand-off.
type Context struct {
	ch   chan int
	done chan struct{}
}

// Init prepares c to run entry on a goroutine of its own the first time it
// is switched to. entry receives the action of that first switch and must
// never return; it leaves only through Switch or Destroy.
func (c *Context) Init(entry func(action int)) {
	c.ch = make(chan int)
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		action, ok := <-c.ch
		if !ok {
			return
		}
		entry(action)
		panic("coro: entry returned")
	}()
}

// InitBorrowed prepares c for the goroutine calling it, which runs on a
// stack it does not own.
func (c *Context) InitBorrowed() {
	c.ch = make(chan int)
}

// Switch saves the caller into from and resumes to with action.
func Switch(from, to *Context, action int) int {
	to.ch <- action
	action, ok := <-from.ch
	if !ok {
		runtime.Goexit()
	}
	return action
}

// Destroy ends the goroutine parked in c and waits for it to finish. A
// goroutine parked inside Switch unwinds with runtime.Goexit, running its
// deferred calls. Destroy must only be used on Contexts set up with Init.
func Destroy(from, c *Context) {
	if c.done == nil {
		return
	}
	close(c.ch)
	<-c.done
}
