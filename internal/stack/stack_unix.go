//go:build unix

package stack

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Replaced in tests.
var (
	mprotect = unix.Mprotect
	munmap   = unix.Munmap
)

func pageSize() int {
	return unix.Getpagesize()
}

// mapStack maps size bytes plus one guard page below them.
func mapStack(size, page int) ([]byte, int, error) {
	mem, err := unix.Mmap(-1, 0, size+page, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, 0, err
	}
	if err := mprotect(mem[:page], unix.PROT_NONE); err != nil {
		return nil, 0, errors.Join(err, munmap(mem))
	}
	return mem, page, nil
}

func unmapStack(mem []byte) error {
	return munmap(mem)
}
