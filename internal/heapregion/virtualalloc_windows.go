// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows

package heapregion

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// reserveCommitBackend implements the Windows backend via
// VirtualAlloc(MEM_RESERVE) followed by VirtualAlloc(MEM_COMMIT): Windows
// has no mremap equivalent, so growth "in place" means reserving a large
// address range once and committing more of it on demand, never actually
// relocating the mapping while pages remain committed within it.
type reserveCommitBackend struct {
	cfg Config

	// reservation tracks the single large reserved range backing the
	// nursery, since Windows can commit additional pages inside a
	// reservation without ever moving it.
	nurseryBase uintptr
	nurseryCap  uintptr
}

// NewReserveCommitBackend returns the Windows VirtualAlloc-based Backend.
func NewReserveCommitBackend(cfg Config) Backend {
	return &reserveCommitBackend{cfg: cfg}
}

func (b *reserveCommitBackend) GrowHeap(prev *Chunk, minBytes uintptr) (*Chunk, uintptr, error) {
	size := pageRound(minBytes)
	hint := b.cfg.PreferredOldGenBase
	if prev != nil {
		hint = prev.Addr + prev.Size
	}
	addr, err := windows.VirtualAlloc(hint, size,
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		addr, err = windows.VirtualAlloc(0, size,
			windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
		if err != nil {
			return nil, 0, fmt.Errorf("heapregion: VirtualAlloc %d bytes: %w", size, err)
		}
	}
	if !b.cfg.Range.Contains(addr, size) {
		windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		return nil, 0, &ErrOutsideRange{Addr: addr, Size: size, Range: b.cfg.Range}
	}
	return &Chunk{Addr: addr, Size: size}, size, nil
}

func (b *reserveCommitBackend) FreeChunk(c *Chunk) error {
	return windows.VirtualFree(c.Addr, 0, windows.MEM_RELEASE)
}

// nurseryReserveCap is the address space reserved up front for the
// nursery so that later commits never relocate it.
const nurseryReserveCap = 256 << 20

func (b *reserveCommitBackend) GrowNursery(oldPtr uintptr, oldSize, newSize uintptr) (uintptr, error) {
	newSize = pageRound(newSize)
	if oldPtr == 0 {
		base, err := windows.VirtualAlloc(b.cfg.PreferredNurseryBase, nurseryReserveCap,
			windows.MEM_RESERVE, 0)
		if err != nil {
			base, err = windows.VirtualAlloc(0, nurseryReserveCap, windows.MEM_RESERVE, 0)
			if err != nil {
				return 0, fmt.Errorf("heapregion: reserve nursery range: %w", err)
			}
		}
		b.nurseryBase = base
		b.nurseryCap = nurseryReserveCap
		if _, err := windows.VirtualAlloc(base, newSize, windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
			return 0, fmt.Errorf("heapregion: commit %d bytes: %w", newSize, err)
		}
		if !b.cfg.Range.Contains(base, newSize) {
			return 0, &ErrOutsideRange{Addr: base, Size: newSize, Range: b.cfg.Range}
		}
		return base, nil
	}
	if newSize > b.nurseryCap {
		return 0, fmt.Errorf("heapregion: nursery growth %d exceeds reserved %d; no in-place room", newSize, b.nurseryCap)
	}
	if _, err := windows.VirtualAlloc(oldPtr, newSize, windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
		return 0, fmt.Errorf("heapregion: commit additional %d bytes: %w", newSize-oldSize, err)
	}
	return oldPtr, nil
}


func newPlatformDefault(cfg Config) Backend {
	return NewReserveCommitBackend(cfg)
}
