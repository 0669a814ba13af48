// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapregion

import (
	"fmt"
	"unsafe"
)

// portableBackend implements heap growth with plain general-purpose
// allocation (make([]byte, n)), aligned to the allocation unit, for
// platforms with neither mmap/mremap nor VirtualAlloc. It never grows a
// chunk in place — every GrowHeap/GrowNursery call allocates a fresh,
// larger block and the caller is responsible for copying (the old
// generation) or the nursery accepting relocation (its blocks are already
// re-scanned on every young collection, so relocation is free there).
//
// Because plain Go allocation gives no control over address placement,
// portableBackend cannot honor a PreferredOldGenBase/PreferredNurseryBase
// hint or an AddressRange tighter than the platform's usable heap; callers
// that need strict address-range tagging should prefer mmapBackend or
// reserveCommitBackend.
type portableBackend struct {
	cfg Config
	// pin keeps Go-GC-visible backing arrays alive for as long as a chunk
	// built from them is in use; the alore heap's own GC never sees these
	// byte slices, only the raw addresses handed out below.
	pin map[uintptr][]byte
}

// NewPortableBackend returns the malloc-based fallback Backend.
func NewPortableBackend(cfg Config) Backend {
	return &portableBackend{cfg: cfg, pin: make(map[uintptr][]byte)}
}

const allocUnit = 8

func alignUp(raw []byte) (addr uintptr, aligned []byte) {
	base := uintptr(unsafe.Pointer(&raw[0]))
	pad := (allocUnit - base%allocUnit) % allocUnit
	return base + pad, raw[pad:]
}

func (b *portableBackend) allocate(size uintptr) (uintptr, []byte, error) {
	raw := make([]byte, size+allocUnit)
	addr, aligned := alignUp(raw)
	if !b.cfg.Range.Contains(addr, size) {
		return 0, nil, &ErrOutsideRange{Addr: addr, Size: size, Range: b.cfg.Range}
	}
	b.pin[addr] = raw
	return addr, aligned[:size], nil
}

func (b *portableBackend) GrowHeap(prev *Chunk, minBytes uintptr) (*Chunk, uintptr, error) {
	size := roundUp(minBytes, allocUnit)
	addr, _, err := b.allocate(size)
	if err != nil {
		return nil, 0, fmt.Errorf("heapregion: portable alloc %d bytes: %w", size, err)
	}
	return &Chunk{Addr: addr, Size: size}, size, nil
}

func (b *portableBackend) FreeChunk(c *Chunk) error {
	delete(b.pin, c.Addr)
	return nil
}

func (b *portableBackend) GrowNursery(oldPtr uintptr, oldSize, newSize uintptr) (uintptr, error) {
	size := roundUp(newSize, allocUnit)
	addr, aligned, err := b.allocate(size)
	if err != nil {
		return 0, fmt.Errorf("heapregion: portable nursery alloc %d bytes: %w", size, err)
	}
	if oldPtr != 0 {
		old := unsafe.Slice((*byte)(unsafe.Pointer(oldPtr)), oldSize)
		copy(aligned, old)
		delete(b.pin, oldPtr)
	}
	return addr, nil
}

func roundUp(n, unit uintptr) uintptr {
	return (n + unit - 1) &^ (unit - 1)
}
