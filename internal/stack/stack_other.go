//go:build !unix

package stack

import (
	"os"
	"unsafe"
)

func pageSize() int {
	return os.Getpagesize()
}

// mapStack falls back to Go memory without a guard page. The slice is
// over-allocated so the usable region starts 16-byte aligned.
func mapStack(size, page int) ([]byte, int, error) {
	mem := make([]byte, size+16)
	off := 0
	for uintptr(unsafe.Pointer(&mem[off]))%16 != 0 {
		off++
	}
	return mem[off:], 0, nil
}

func unmapStack(mem []byte) error {
	return nil
}
