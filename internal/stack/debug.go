package stack

import (
	"fmt"
	"sync"
)

// TrackID identifies a registration with a Tracker.
type TrackID uint64

// A Tracker is told about every stack region for as long as it is alive,
// the way a memory debugger is told about user-managed stacks.
type Tracker interface {
	Register(r Range) TrackID
	Deregister(id TrackID)
}

// A Sanitizer is notified around every stack switch. StartSwitch is called
// on the old stack right before control leaves it, FinishSwitch on the new
// stack right after control arrives. A borrowed stack is described by the
// zero Range.
type Sanitizer interface {
	StartSwitch(to Range)
	FinishSwitch(self Range)
}

// MemTracker is a Tracker that keeps the registered ranges in memory and
// panics on overlapping or unknown registrations. It is safe for use by
// multiple threads.
type MemTracker struct {
	mu     sync.Mutex
	next   TrackID
	ranges map[TrackID]Range
}

func NewTracker() *MemTracker {
	return &MemTracker{
		next:   1,
		ranges: make(map[TrackID]Range),
	}
}

func (t *MemTracker) Register(r Range) TrackID {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, other := range t.ranges {
		if r.Base < other.Base+uintptr(other.Size) && other.Base < r.Base+uintptr(r.Size) {
			panic(fmt.Sprintf("stack: registering %#x+%d overlaps registration %d at %#x+%d", r.Base, r.Size, id, other.Base, other.Size))
		}
	}
	id := t.next
	t.next++
	t.ranges[id] = r
	return id
}

func (t *MemTracker) Deregister(id TrackID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.ranges[id]; !ok {
		panic(fmt.Sprintf("stack: deregistering unknown id %d", id))
	}
	delete(t.ranges, id)
}

// Live returns the number of registered ranges.
func (t *MemTracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ranges)
}

// ShadowChecker is a Sanitizer that checks every switch is bracketed
// correctly: each StartSwitch is followed by exactly one FinishSwitch on the
// stack that was switched to. A ShadowChecker must only be used by a single
// thread.
type ShadowChecker struct {
	pending  bool
	target   Range
	switches int
}

func NewShadowChecker() *ShadowChecker {
	return &ShadowChecker{}
}

func (c *ShadowChecker) StartSwitch(to Range) {
	if c.pending {
		panic(fmt.Sprintf("stack: switch to %#x started while switch to %#x is unfinished", to.Base, c.target.Base))
	}
	c.pending = true
	c.target = to
}

func (c *ShadowChecker) FinishSwitch(self Range) {
	if !c.pending {
		panic(fmt.Sprintf("stack: finishing switch to %#x that never started", self.Base))
	}
	if self != c.target {
		panic(fmt.Sprintf("stack: switch to %#x finished on %#x", c.target.Base, self.Base))
	}
	c.pending = false
	c.switches++
}

// Switches returns the number of completed switches.
func (c *ShadowChecker) Switches() int {
	return c.switches
}

// Balanced reports whether no switch is in flight.
func (c *ShadowChecker) Balanced() bool {
	return !c.pending
}
