// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"fmt"

	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/value"
)

// Violation describes one failure of a heap invariant found by Verify.
type Violation struct {
	Addr uintptr
	Msg  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%#x: %s", v.Addr, v.Msg)
}

// Verify walks the entire old-generation heap and checks it against
// spec.md §8's structural invariants, supplementing the core with the
// kind of consistency checker the original exposes as a debug build
// option (original_source/src/debug_runtime.c's heap-verification pass).
// It never runs automatically; callers (such as this package's tests)
// invoke it explicitly, since walking every block of a large heap is not
// something to pay for on every collection.
func Verify(a *falloc.Allocator) []Violation {
	a.Lock()
	defer a.Unlock()

	var out []Violation
	for c := a.Chunks(); c != nil; c = c.Next {
		out = append(out, verifyChunk(c.Addr, c.Size)...)
	}
	return out
}

func verifyChunk(base, size uintptr) []Violation {
	var out []Violation
	cursor := base
	end := base + size
	for cursor < end {
		h := readHeader(cursor)
		k := h.KindOf()
		blockSize := h.Size()

		// Invariant 1 (spec.md §8): every header decodes to a known kind.
		if k > value.KindFree {
			out = append(out, Violation{cursor, fmt.Sprintf("unknown block kind %d", k)})
			return out // further bytes are not trustworthy as headers
		}

		// Invariant 2: no block's extent may run past its chunk.
		total := blockSize + wordSize
		if cursor+total > end {
			out = append(out, Violation{cursor, fmt.Sprintf("block of size %d overruns chunk ending at %#x", blockSize, end)})
			return out
		}

		// Invariant 3: a KindMixed block's recorded prefix never exceeds
		// its total size.
		if k == value.KindMixed {
			prefixBytes := mixedPrefixWords(cursor) * wordSize
			if prefixBytes+wordSize > blockSize {
				out = append(out, Violation{cursor, fmt.Sprintf("mixed block prefix %d exceeds block size %d", prefixBytes, blockSize)})
			}
		}

		cursor += total
	}

	// Invariant 4: the walk must land exactly on the chunk boundary; a
	// short or long landing means some block's recorded size disagrees
	// with the bytes actually used to store it.
	if cursor != end {
		out = append(out, Violation{cursor, fmt.Sprintf("chunk walk ended at %#x, chunk ends at %#x", cursor, end)})
	}
	return out
}

// VerifyNursery checks that a nursery's bump cursor lies within
// [base, end]. It does not examine the nursery's big-block list.
func VerifyNursery(base, bump, end uintptr) []Violation {
	var out []Violation
	if bump < base || bump > end {
		out = append(out, Violation{bump, fmt.Sprintf("bump cursor outside nursery range [%#x, %#x)", base, end)})
	}
	return out
}
