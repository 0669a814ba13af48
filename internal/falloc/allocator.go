// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import (
	"fmt"
	"sync"

	"golang.org/x/alorert/internal/heapregion"
	"golang.org/x/alorert/internal/runtimelog"
	"golang.org/x/alorert/internal/value"
)

// GrowthFraction and MinHeapGrow bound the old-generation growth size
// (spec.md §4.2): growth is the larger of a fraction of the current heap
// and this absolute minimum increment.
const (
	GrowthFraction = 1.0 / 4 // grow by at least 1/4 of the current heap...
	MinHeapGrow    = 64 * 1024
)

// Allocator is the old-generation segregated free-list allocator. All of
// its methods except Stats must be called with the heap lock held — in
// this module that is Allocator.mu, which also plays the role of the
// "heap mutex" named in spec.md §5 and §6.
type Allocator struct {
	mu sync.Mutex

	backend heapregion.Backend
	chunks  *heapregion.Chunk // linked list of old-generation chunks
	lastChunk *heapregion.Chunk

	lists freeLists

	// biasAddr/biasSize is the bump-allocation cursor remembered between
	// calls (spec.md's "bias block"/"current free block").
	biasAddr uintptr
	biasSize uintptr

	curHeapSize uintptr
	maxHeapSize uintptr

	// ZeroOnFree mirrors the original's optional debug fill of freed
	// blocks (AAddFreeBlock_Debug); off by default for performance.
	ZeroOnFree bool

	stats Stats
}

// Stats accumulates allocator-observable counters, supplementing spec.md
// with the kind of heap growth/occupancy statistics the original exposes
// through its --debug-gc flag (original_source/src/debug_runtime.c).
type Stats struct {
	AllocCount  uint64
	FreeCount   uint64
	BytesAlloc  uint64
	BytesFreed  uint64
	GrowCount   uint64
	GrowBytes   uint64
}

// New creates an Allocator backed by b, bounded to maxHeapSize bytes.
func New(b heapregion.Backend, maxHeapSize uintptr) *Allocator {
	return &Allocator{backend: b, maxHeapSize: maxHeapSize}
}

// Stats returns a snapshot of the allocator's counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// HeapSize returns the current total old-generation heap size in bytes.
func (a *Allocator) HeapSize() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.curHeapSize
}

// Alloc implements spec.md §4.3's allocation algorithm: bias cursor
// fast-path, then segregated free-list search, then heap growth, with a
// forced-collection retry left to the caller (internal/gc wraps Alloc to
// add that retry, since only it knows how to run a forced collection).
// The caller must hold the heap lock (callers reach Alloc only through
// gc.Runtime, which owns that lock).
func (a *Allocator) Alloc(size uintptr) (addr uintptr, ok bool) {
	size = RoundSize(size)

	if a.biasSize >= size {
		addr = a.biasAddr
		remaining := a.biasSize - size
		if remaining > 0 {
			a.biasAddr += size
			a.biasSize = remaining
		} else {
			a.biasAddr, a.biasSize = 0, 0
		}
		writeHeader(addr, value.MakeHeader(value.KindFree, size)) // caller overwrites kind
		a.recordAlloc(size)
		return addr, true
	}

	a.flushBias()

	idx := classIndex(size)
	var n *freeNode
	if idx < firstNonuniformIndex {
		n = a.lists.removeHead(idx)
		if n == nil {
			n = a.lists.firstNonEmptyFrom(idx + 1)
		}
	} else {
		n = a.lists.findFit(idx, size)
		if n == nil {
			n = a.lists.firstNonEmptyFrom(idx + 1)
		}
	}
	if n == nil {
		return 0, false
	}

	addr = n.addr
	remainder := n.size - size
	if remainder >= MinBlockSize {
		if remainder < smallestNonuniformSize {
			a.biasAddr, a.biasSize = addr+size, remainder
			// remainder is the bias block's full physical span; its
			// header, like every other free block's, records payload
			// size (span minus the header word itself) so the sweep
			// and verifier walks can reconstruct the span uniformly
			// via Size()+AllocUnit regardless of how a free block
			// arose.
			writeHeader(a.biasAddr, value.MakeHeader(value.KindFree, remainder-AllocUnit))
		} else {
			a.addFreeBlock(addr+size, remainder)
		}
	} else {
		// Remainder too small to host a block; the whole node goes to
		// the allocation (spec.md §4.3 point 4).
		size = n.size
	}
	writeHeader(addr, value.MakeHeader(value.KindFree, size))
	a.recordAlloc(size)
	return addr, true
}

func (a *Allocator) recordAlloc(size uintptr) {
	a.stats.AllocCount++
	a.stats.BytesAlloc += uint64(size)
}

// flushBias returns the current bias block to the free lists, matching
// spec.md step 2's "otherwise flush the cursor back to the free lists".
func (a *Allocator) flushBias() {
	if a.biasSize == 0 {
		return
	}
	a.addFreeBlock(a.biasAddr, a.biasSize)
	a.biasAddr, a.biasSize = 0, 0
}

// addFreeBlock inserts a block into its segregated free list, writing its
// header and optionally zeroing its payload. size is the block's full
// physical span (header word included) — the same convention Alloc's own
// free-list bookkeeping (classIndex, isLargeEnough, the bias cursor) uses
// throughout this package. The header itself, however, must record
// payload size like every other header in the heap (spec.md §3.2; see
// internal/gc/layout.go's scanFields and the sweep/verify walks), so it
// is written as size-AllocUnit here, not size.
func (a *Allocator) addFreeBlock(addr, size uintptr) {
	if a.ZeroOnFree {
		zeroRange(addr, size)
	}
	writeHeader(addr, value.MakeHeader(value.KindFree, size-AllocUnit))
	a.lists.insert(addr, size)
}

// Free returns a block to the allocator; size is its full physical span,
// header word included (the same convention addFreeBlock and Alloc use).
// Called by the sweep phase (internal/gc) for unmarked old-generation
// blocks, and directly for
// explicit static-allocation frees.
func (a *Allocator) Free(addr, size uintptr) {
	a.stats.FreeCount++
	a.stats.BytesFreed += uint64(size)
	a.addFreeBlock(addr, size)
}

// InvalidateBias discards the bias cursor without returning it to a free
// list. Used by sweep (spec.md §4.3: "the bias cursor is invalidated")
// because sweep rebuilds every free list from scratch by walking chunks.
func (a *Allocator) InvalidateBias() {
	a.biasAddr, a.biasSize = 0, 0
}

// ResetFreeLists empties every free list, for use by sweep immediately
// before it rebuilds them from a fresh chunk walk.
func (a *Allocator) ResetFreeLists() {
	a.lists = freeLists{}
}

// Chunks returns the linked list of old-generation chunks, for use by
// sweep and the debug verifier.
func (a *Allocator) Chunks() *heapregion.Chunk {
	return a.chunks
}

// growHeap grows the old generation to satisfy an allocation of at least
// minBytes, per spec.md §4.2: growth size is the larger of a fraction of
// the current heap (or MinHeapGrow) and the request size plus bitmap
// overhead.
func (a *Allocator) growHeap(minBytes uintptr) error {
	// Bitmap overhead: one bit per AllocUnit bytes, rounded to a whole
	// word of bitmap storage.
	bitmapOverhead := (minBytes/AllocUnit + 63) / 64 * 8
	required := minBytes + bitmapOverhead

	if a.maxHeapSize != 0 && a.curHeapSize+required > a.maxHeapSize {
		return fmt.Errorf("falloc: heap growth would exceed max heap size %d", a.maxHeapSize)
	}

	grow := uintptr(float64(a.curHeapSize) * GrowthFraction)
	if grow < MinHeapGrow {
		grow = MinHeapGrow
	}
	want := required
	if grow > want {
		want = grow
	}
	// Never ask for more than the configured ceiling allows, even though
	// the "ambitious" growth amount above would exceed it; the request
	// itself already passed the check above.
	if a.maxHeapSize != 0 && a.curHeapSize+want > a.maxHeapSize {
		want = a.maxHeapSize - a.curHeapSize
	}

	chunk, actual, err := a.backend.GrowHeap(a.lastChunk, want)
	if err != nil {
		return fmt.Errorf("falloc: grow heap: %w", err)
	}
	if a.chunks == nil {
		a.chunks = chunk
	} else {
		a.lastChunk.Next = chunk
	}
	a.lastChunk = chunk
	a.curHeapSize += actual
	a.stats.GrowCount++
	a.stats.GrowBytes += uint64(actual)
	runtimelog.Printf("falloc: grew old generation by %d bytes (requested %d), heap now %d bytes", actual, want, a.curHeapSize)

	// A newly grown chunk is entirely free. The allocator does not track
	// chunks' address adjacency or which free list (if any) holds a
	// chunk's trailing block, so even when the backend happens to place
	// chunk immediately after the previous one (GrowHeap's address hint),
	// this adds a second, independent free block rather than coalescing
	// it with the prior chunk's trailing space.
	a.addFreeBlock(chunk.Addr, chunk.Size)
	return nil
}

// AdoptChunk links a block of memory the allocator did not itself obtain
// from its backend into the old-generation chunk list, as a chunk whose
// entire span is the single live block already written at addr. This is
// how a nursery big block is retired into the old generation without
// copying its bytes (spec.md §4.4): the chunk is added so sweep can walk
// it like any other, but since the chunk's whole span is the live object,
// no free block is added for it now. The caller must hold the heap lock.
func (a *Allocator) AdoptChunk(addr, size uintptr) {
	c := &heapregion.Chunk{Addr: addr, Size: size}
	if a.chunks == nil {
		a.chunks = c
	} else {
		a.lastChunk.Next = c
	}
	a.lastChunk = c
	a.curHeapSize += size
}

// GrowHeap is the exported form of growHeap, used by internal/gc to grow
// the heap directly (e.g. ahead of a retirement that cannot itself call
// back into Alloc).
func (a *Allocator) GrowHeap(minBytes uintptr) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.growHeap(minBytes)
}

// GrowHeapLocked is GrowHeap for a caller that already holds the heap
// lock (internal/gc's collector runs its whole collection cycle under
// that lock, so it cannot use the self-locking GrowHeap without
// deadlocking itself).
func (a *Allocator) GrowHeapLocked(minBytes uintptr) error {
	return a.growHeap(minBytes)
}

// Lock/Unlock expose the allocator's mutex as the heap lock named in
// spec.md §5/§6, for callers (internal/gc) that must hold it across a
// sequence of allocator and GC-state operations.
func (a *Allocator) Lock()   { a.mu.Lock() }
func (a *Allocator) Unlock() { a.mu.Unlock() }

// AllocLocked is Alloc plus automatic heap growth, still without the
// forced-collection retry (that retry needs GC cooperation and lives in
// internal/gc.Runtime.Alloc).
func (a *Allocator) AllocLocked(size uintptr) (addr uintptr, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if addr, ok := a.Alloc(size); ok {
		return addr, nil
	}
	if err := a.growHeap(RoundSize(size)); err != nil {
		return 0, err
	}
	if addr, ok := a.Alloc(size); ok {
		return addr, nil
	}
	return 0, fmt.Errorf("falloc: allocation of %d bytes failed after heap growth", size)
}
