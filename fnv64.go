// Copyright 2011 The Go Authors. All rights reserved.  Use of this source code
// is governed by a BSD-style license that can be found at
// https://go.googlesource.com/go/+/refs/heads/master/LICENSE.

package gocoro

import (
	"encoding/binary"
	"math"
)

type fnv64 uint64

const (
	fnv64init = 14695981039346656037
	prime64   = 1099511628211
)

func newFnv64() fnv64 {
	return fnv64init
}

func (s *fnv64) hashByte(c byte) {
	*s *= prime64
	*s ^= fnv64(c)
}

// hashInt hashes data using as few bytes as its magnitude needs.
func (s *fnv64) hashInt(data uint64) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], data)
	size := 8
	switch {
	case data == 0:
		size = 0
	case data < math.MaxUint8:
		size = 1
	case data < math.MaxUint16:
		size = 2
	case data < math.MaxUint32:
		size = 4
	}
	for _, c := range n[:size] {
		s.hashByte(c)
	}
}
