// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heapregion implements the pluggable OS backend for old-generation
// chunk acquisition and nursery growth (spec.md §4.2). Three backends are
// provided: an anonymous-mmap backend with in-place remap (Linux), a
// reserve-then-commit virtual memory backend (Windows), and a portable
// aligned-allocation backend used when neither applies. All backends must
// return addresses inside the configured AddressRange; callers reject or
// retry otherwise.
package heapregion

import (
	"fmt"
	"unsafe"
)

// AddressRange restricts both heap regions to a sub-range of the address
// space so that a pointer's low tag bits are always zero and its high bits
// are never needed by the value tag (spec.md §3.3). It is advisory on
// platforms (like the portable backend) that cannot honor a preferred base.
type AddressRange struct {
	Min, Max uintptr
}

// Contains reports whether [addr, addr+size) lies entirely within r.
func (r AddressRange) Contains(addr, size uintptr) bool {
	if r.Min == 0 && r.Max == 0 {
		return true // unrestricted
	}
	return addr >= r.Min && addr+size <= r.Max
}

// Chunk is one old-generation heap chunk obtained from a Backend. Chunks
// form the linked list described in spec.md §3.3; once allocated a chunk's
// address and size never change: every GrowHeap call returns a new chunk
// rather than extending an existing one.
type Chunk struct {
	Addr uintptr
	Size uintptr
	Next *Chunk
}

// Data returns a byte slice view of the chunk's memory, for use by the
// free-list allocator and the debug verifier. The slice aliases the raw
// region; callers must not let it outlive the chunk's lifetime.
func (c *Chunk) Data() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c.Addr)), c.Size)
}

// Backend is the OS-level region-acquisition contract consumed by
// internal/falloc (old generation) and internal/nursery (young generation).
type Backend interface {
	// GrowHeap allocates a new old-generation chunk of at least minBytes,
	// preferably immediately adjacent to prev so prev can be extended in
	// place by concatenation. Returns the new chunk and its actual size,
	// which may exceed minBytes.
	GrowHeap(prev *Chunk, minBytes uintptr) (chunk *Chunk, actualBytes uintptr, err error)

	// FreeChunk releases a chunk obtained from GrowHeap.
	FreeChunk(c *Chunk) error

	// GrowNursery grows the single contiguous nursery region, preferably
	// in place. oldPtr/oldSize describe the current region (oldSize may
	// be 0 on first call); newSize is the desired size. Returns the base
	// address of the (possibly relocated) region.
	GrowNursery(oldPtr uintptr, oldSize, newSize uintptr) (ptr uintptr, err error)
}

// ErrOutsideRange is returned by a Backend when the OS handed back memory
// outside the configured AddressRange and no in-range retry succeeded.
type ErrOutsideRange struct {
	Addr, Size uintptr
	Range      AddressRange
}

func (e *ErrOutsideRange) Error() string {
	return fmt.Sprintf("region [%#x, %#x) outside configured range [%#x, %#x)",
		e.Addr, e.Addr+e.Size, e.Range.Min, e.Range.Max)
}

// pageRound rounds n up to the nearest OS page-size multiple. All three
// backends request memory in page-rounded amounts.
func pageRound(n uintptr) uintptr {
	const pageSize = 4096
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// Config mirrors the advisory preferred-base knobs described in spec.md §6.
type Config struct {
	Range AddressRange
	// PreferredOldGenBase and PreferredNurseryBase are advisory hints
	// passed to the backend's first GrowHeap/GrowNursery call.
	PreferredOldGenBase  uintptr
	PreferredNurseryBase uintptr
}
