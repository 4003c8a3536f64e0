//go:build race

// Package race annotates synchronization the race detector cannot see, such
// as control handed between goroutines by runtime coroutines.
package race

import (
	"runtime"
	"unsafe"
)

const Enabled = true

func Acquire(addr unsafe.Pointer) {
	runtime.RaceAcquire(addr)
}

func ReleaseMerge(addr unsafe.Pointer) {
	runtime.RaceReleaseMerge(addr)
}
