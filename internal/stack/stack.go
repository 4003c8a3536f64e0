// Package stack allocates the memory regions owned by coroutines.
//
// A Stack is laid out like a machine stack: it is used from the top (highest
// address) down, and on platforms that support it the page directly below
// the usable region is mapped without any access rights so that running off
// the end faults instead of silently touching a neighbour.
//
// Go code cannot run on such a region: goroutines execute on stacks managed
// by the Go runtime. A Stack is memory the owner writes explicitly, and the
// guard page, poisoning and Used only cover those writes.
package stack

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrReleased is returned by Release when the stack was already released.
var ErrReleased = errors.New("stack already released")

// PoisonByte fills poisoned stacks. Used scans for the first byte that no
// longer holds it.
const PoisonByte = 0xaa

// Options configure Allocate.
type Options struct {
	// Poison fills the region with PoisonByte so Used can report the
	// high-water mark.
	Poison bool
	// Tracker, if set, has the region registered for its whole lifetime.
	Tracker Tracker
}

// A Stack is a region of memory exclusively owned by one coroutine.
type Stack struct {
	mem      []byte // full mapping, including the guard page
	usable   []byte
	guard    int
	poisoned bool
	tracker  Tracker
	trackID  TrackID
	released bool
}

// A Range describes a stack region by its lowest address and size. The
// zero Range describes a borrowed stack such as a thread's own.
type Range struct {
	Base uintptr
	Size int
}

// Allocate returns a new stack with at least size usable bytes. The actual
// size is rounded up to a page multiple.
func Allocate(size int, opts Options) (*Stack, error) {
	if size <= 0 {
		return nil, fmt.Errorf("allocating stack: bad size %d", size)
	}
	page := pageSize()
	size = (size + page - 1) &^ (page - 1)

	mem, guard, err := mapStack(size, page)
	if err != nil {
		return nil, fmt.Errorf("allocating stack of %d bytes: %w", size, err)
	}

	s := &Stack{
		mem:     mem,
		usable:  mem[guard : guard+size : guard+size],
		guard:   guard,
		tracker: opts.Tracker,
	}
	if opts.Poison {
		for i := range s.usable {
			s.usable[i] = PoisonByte
		}
		s.poisoned = true
	}
	if s.tracker != nil {
		s.trackID = s.tracker.Register(s.Range())
	}
	return s, nil
}

// Bytes returns the usable region.
func (s *Stack) Bytes() []byte {
	return s.usable
}

// Size returns the number of usable bytes.
func (s *Stack) Size() int {
	return len(s.usable)
}

// Base returns the lowest usable address.
func (s *Stack) Base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.usable)))
}

func (s *Stack) Range() Range {
	return Range{Base: s.Base(), Size: s.Size()}
}

// Guarded reports whether a guard page sits below the usable region.
func (s *Stack) Guarded() bool {
	return s.guard > 0
}

// Used returns how many bytes, counted from the top of the stack, have been
// written since allocation. It returns -1 if the stack was not poisoned.
func (s *Stack) Used() int {
	if !s.poisoned {
		return -1
	}
	for i, b := range s.usable {
		if b != PoisonByte {
			return len(s.usable) - i
		}
	}
	return 0
}

// Release unmaps the stack and drops its tracker registration. Only the
// first call has any effect; later calls return ErrReleased.
func (s *Stack) Release() error {
	if s.released {
		return ErrReleased
	}
	s.released = true
	if s.tracker != nil {
		s.tracker.Deregister(s.trackID)
	}
	mem := s.mem
	s.mem, s.usable = nil, nil
	if err := unmapStack(mem); err != nil {
		return fmt.Errorf("releasing stack: %w", err)
	}
	return nil
}
