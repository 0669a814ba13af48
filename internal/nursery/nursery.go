// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nursery implements the young-generation region: a single
// contiguous area grown through internal/heapregion, carved into private
// per-thread slabs for lock-free bump allocation (spec.md §4.4), plus the
// "big block" list for nursery allocations above the large-block
// threshold that are retired by linking instead of copying.
package nursery

import (
	"fmt"
	"sync"

	"golang.org/x/alorert/internal/heapregion"
)

// BigBlockThreshold is the smallest block size that is never allocated
// from a thread's bump slab; it goes straight to the big-block list
// instead. Matches the original's A_MIN_BIG_BLOCK_SIZE.
const BigBlockThreshold = 1024

// SlabIncrement is the size a thread's private slab is refilled by,
// matching the original's A_MIN_THREAD_HEAP_INCREMENT.
const SlabIncrement = 2048

// DefaultSize, MaxSize and MinRelativeSize mirror the original's
// A_INITIAL_NURSERY_SIZE / A_MAX_NURSERY_SIZE / A_MIN_NURSERY_RELATIVE_SIZE.
const (
	DefaultSize      = 64 * 1024
	MaxSize          = 128 * 1024
	MinRelativeSize  = 2 // nursery must be at least OldGenSize/16 = OldGenSize*2/32
)

// BigBlockNode is the header wrapping a nursery big block (spec.md §4.4):
// it lets the young collector treat reachable big blocks as already part
// of the nursery without copying them, retiring them to the old
// generation by unlinking and re-heading rather than moving bytes.
type BigBlockNode struct {
	Addr     uintptr // address of the wrapper; block data follows immediately
	DataSize uintptr // size of the wrapped block, excluding the wrapper header
	Next     *BigBlockNode
}

// bigBlockNodeSize is the size of the BigBlockNode header area physically
// reserved in the nursery ahead of the wrapped block's own header.
const bigBlockNodeSize = 16 // two words: header + size/next handled in Go struct

// headerWordSize is the size, in bytes, of the object header word every
// allocation (big block or not) carries ahead of its body; matches
// internal/falloc.AllocUnit, the fixed 8-byte word size this heap design
// assumes throughout.
const headerWordSize = 8

// Nursery is the young-generation region shared by all mutator threads.
// Slab assignment is the only operation requiring the heap lock; bump
// allocation within an assigned slab is lock-free.
type Nursery struct {
	mu sync.Mutex

	backend heapregion.Backend
	base    uintptr
	size    uintptr

	// bump is the shared cursor from which private slabs are carved.
	// It only advances under mu.
	bump uintptr
	end  uintptr

	bigBlocks *BigBlockNode

	stats Stats
}

// Stats accumulates nursery-observable counters.
type Stats struct {
	SlabsIssued   uint64
	BigBlocks     uint64
	BigBlockBytes uint64
}

// New creates a Nursery backed by b with the given initial size.
func New(b heapregion.Backend, initialSize uintptr) (*Nursery, error) {
	if initialSize == 0 {
		initialSize = DefaultSize
	}
	base, err := b.GrowNursery(0, 0, initialSize)
	if err != nil {
		return nil, fmt.Errorf("nursery: initial allocation: %w", err)
	}
	return &Nursery{
		backend: b,
		base:    base,
		size:    initialSize,
		bump:    base,
		end:     base + initialSize,
	}, nil
}

// Base and Size report the nursery's current address range, used by the
// GC to recognize whether a reference points into the nursery.
func (n *Nursery) Base() uintptr { return n.base }
func (n *Nursery) Size() uintptr { return n.size }
func (n *Nursery) End() uintptr  { return n.base + n.size }

// Contains reports whether addr lies within the nursery's current range.
func (n *Nursery) Contains(addr uintptr) bool {
	return addr >= n.base && addr < n.base+n.size
}

// Slab is a private per-thread bump-allocation window carved from the
// nursery (spec.md §3.4's "heap pointer and heap limit").
type Slab struct {
	Ptr uintptr
	End uintptr
}

// RefillSlab hands out a new slab of at least SlabIncrement bytes from
// the shared bump cursor. Requires the heap lock: callers go through
// internal/gc.Runtime, which serializes refills the same way it
// serializes free-list access.
func (n *Nursery) RefillSlab(minSize uintptr) (Slab, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	size := SlabIncrement
	if minSize > uintptr(size) {
		size = int(minSize)
	}
	if n.bump+uintptr(size) > n.end {
		return Slab{}, false
	}
	s := Slab{Ptr: n.bump, End: n.bump + uintptr(size)}
	n.bump += uintptr(size)
	n.stats.SlabsIssued++
	return s, true
}

// Remaining reports how many bytes are left in the shared bump cursor,
// used to decide whether a young collection should be triggered instead
// of a slab refill (spec.md §4.5.2: "triggered when nursery fills").
func (n *Nursery) Remaining() uintptr {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bump >= n.end {
		return 0
	}
	return n.end - n.bump
}

// AllocBigBlock links a nursery allocation above BigBlockThreshold onto
// the big-block list instead of carving it from a slab (spec.md §4.4).
// dataSize is the wrapped object's body size, excluding its own header;
// the reserved region is the wrapper, then the object's header word,
// then its dataSize-byte body. The returned address is the object's own
// header address (where the caller writes the real kind/size), matching
// the convention every other allocator in this module uses: a reference
// always points at a header word, never at a body.
func (n *Nursery) AllocBigBlock(dataSize uintptr) (addr uintptr, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := bigBlockNodeSize + headerWordSize + dataSize
	if n.bump+total > n.end {
		return 0, false
	}
	wrapperAddr := n.bump
	n.bump += total
	node := &BigBlockNode{Addr: wrapperAddr, DataSize: dataSize}
	node.Next = n.bigBlocks
	n.bigBlocks = node
	n.stats.BigBlocks++
	n.stats.BigBlockBytes += uint64(dataSize)
	return wrapperAddr + bigBlockNodeSize, true
}

// BigBlocks returns the current big-block list head, for the young
// collector to walk during a collection (spec.md §4.5.2 step 4).
func (n *Nursery) BigBlocks() *BigBlockNode {
	return n.bigBlocks
}

// SetBigBlocks replaces the big-block list, used by the young collector
// once it has partitioned big blocks into retired (still reachable) and
// dropped (garbage) sets.
func (n *Nursery) SetBigBlocks(head *BigBlockNode) {
	n.bigBlocks = head
}

// Reset rewinds the bump cursor to the nursery base, discarding the
// big-block list (every surviving big block has already been unlinked
// and retired by the caller). Matches spec.md §4.5.2 step 8.
func (n *Nursery) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bump = n.base
	n.bigBlocks = nil
}

// Grow enlarges the nursery, honoring spec.md §4.5.2/§4.2's growth
// policy (grown relative to old-generation size, capped at MaxSize).
// The heap lock must be held by the caller during a stop-the-world pause,
// since relocation on some backends invalidates outstanding slabs.
func (n *Nursery) Grow(newSize uintptr) error {
	if newSize > MaxSize {
		newSize = MaxSize
	}
	if newSize <= n.size {
		return nil
	}
	base, err := n.backend.GrowNursery(n.base, n.size, newSize)
	if err != nil {
		return fmt.Errorf("nursery: grow to %d bytes: %w", newSize, err)
	}
	n.base = base
	n.size = newSize
	n.bump = base
	n.end = base + newSize
	return nil
}

// GetStats returns a snapshot of nursery counters.
func (n *Nursery) GetStats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}
