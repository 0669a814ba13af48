// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import (
	"unsafe"

	"golang.org/x/alorert/internal/value"
)

// readHeader/writeHeader access the header word physically stored at the
// start of a block. Every block, free or allocated, carries one: the
// sweep phase (internal/gc) and the debug verifier both reconstruct the
// heap's layout by walking consecutive headers rather than consulting any
// side table, exactly as spec.md §3.2 requires.
func readHeader(addr uintptr) value.Header {
	return *(*value.Header)(unsafe.Pointer(addr))
}

func writeHeader(addr uintptr, h value.Header) {
	*(*value.Header)(unsafe.Pointer(addr)) = h
}

// zeroRange clears n bytes at addr. Used (optionally, under a debug flag)
// when a block is freed, matching the original's AAddFreeBlock_Debug fill
// behavior.
func zeroRange(addr, n uintptr) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
	for i := range b {
		b[i] = 0
	}
}
