// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gc implements the generational collector (spec.md §4.5): a
// copying young-generation collector, an incremental mark-sweep
// old-generation collector, the write barriers tying the two together,
// identity hash tables, finalizer queues, and a debug heap verifier.
package gc

import (
	"unsafe"

	"golang.org/x/alorert/internal/value"
)

const wordSize = unsafe.Sizeof(value.Value(0))

// readWord/writeWord give the collector the same raw-memory access
// internal/falloc uses to write block headers directly into heap bytes
// (internal/falloc/words.go): the collector must walk live blocks by
// address, not through Go slices, to relocate and rewrite references in
// place.
func readWord(addr uintptr) value.Value {
	return *(*value.Value)(unsafe.Pointer(addr))
}

func writeWord(addr uintptr, v value.Value) {
	*(*value.Value)(unsafe.Pointer(addr)) = v
}

func readHeader(addr uintptr) value.Header {
	return *(*value.Header)(unsafe.Pointer(addr))
}

func writeHeader(addr uintptr, h value.Header) {
	*(*value.Header)(unsafe.Pointer(addr)) = h
}

// readRaw/writeRaw access a word as a plain uintptr, for the handful of
// places (the KindMixed prefix-length word, forwarding checks) that store
// bookkeeping rather than a tagged Value.
func readRaw(addr uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(addr))
}

func writeRaw(addr uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(addr)) = v
}

// bodyOf returns the address of the first word following a block's header.
func bodyOf(addr uintptr) uintptr {
	return addr + wordSize
}

// mixedPrefixWords returns the number of leading Value-slot words in a
// KindMixed block, stored as an out-of-line word immediately after the
// header (value.MixedTotalSize documents why the total size alone is not
// enough to know where the pointer prefix ends).
func mixedPrefixWords(addr uintptr) uintptr {
	return readRaw(bodyOf(addr))
}

// setMixedPrefixWords records a KindMixed block's prefix length; called
// once, when the block is first initialized by its allocator.
func setMixedPrefixWords(addr uintptr, words uintptr) {
	writeRaw(bodyOf(addr), words)
}

// scanFields calls fn with the address of every word in a live block's
// body that the collector must treat as a reference slot, given the
// block's kind and its usable (post-header) body size in bytes.
//
// Non-pointer blocks contribute no slots. Value and Instance blocks treat
// every body word as a slot: the tag bits in each stored Value already
// distinguish references from non-reference data (spec.md §3.1), so there
// is no need for a separate per-class pointer bitmap — scanning blindly
// and checking value.IsRef/value.IsFloat on each word is both correct and
// simpler than carrying type descriptors through the collector. Mixed
// blocks scan only their Value-slot prefix, leaving the trailing raw bytes
// (e.g. a string's encoded text) untouched.
func scanFields(addr uintptr, k value.Kind, bodySize uintptr, fn func(slot uintptr)) {
	var n uintptr
	switch k {
	case value.KindNonPointer:
		return
	case value.KindMixed:
		n = mixedPrefixWords(addr) + 1 // +1 to skip the prefix-length word itself
		body := bodyOf(addr)
		for i := uintptr(1); i < n; i++ {
			fn(body + i*wordSize)
		}
		return
	default: // KindValue, KindInstance
		n = bodySize / wordSize
	}
	body := bodyOf(addr)
	for i := uintptr(0); i < n; i++ {
		fn(body + i*wordSize)
	}
}
