// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package heapregion

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapBackend grows both regions with anonymous private mappings and
// grows the nursery via mremap(MREMAP_MAYMOVE), which extends the mapping
// at its current address when it can and moves it otherwise. This is the
// preferred backend on Linux: mremap grows a mapping without copying its
// pages, matching spec.md §4.2's "preferably immediately adjacent" and
// "preferably in place" language.
type mmapBackend struct {
	cfg Config
}

// NewMmapBackend returns the anonymous-mmap/mremap Backend.
func NewMmapBackend(cfg Config) Backend {
	return &mmapBackend{cfg: cfg}
}

// mmapHinted asks for a mapping at hint via the raw mmap(2) syscall
// (x/sys/unix's Mmap wrapper has no address-hint parameter), and falls
// back to a hint-less unix.Mmap on any failure. MAP_FIXED is not passed,
// so the kernel treats hint as a preference and may place the mapping
// elsewhere.
func mmapHinted(hint, size uintptr) ([]byte, error) {
	if hint != 0 {
		addr, _, errno := unix.Syscall6(unix.SYS_MMAP, hint, size,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_ANON|unix.MAP_PRIVATE, ^uintptr(0), 0)
		if errno == 0 {
			return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
		}
	}
	return unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (b *mmapBackend) GrowHeap(prev *Chunk, minBytes uintptr) (*Chunk, uintptr, error) {
	size := pageRound(minBytes)
	var hint uintptr
	if prev != nil {
		hint = prev.Addr + prev.Size
	} else {
		hint = b.cfg.PreferredOldGenBase
	}
	data, err := mmapHinted(hint, size)
	if err != nil {
		return nil, 0, fmt.Errorf("heapregion: mmap %d bytes: %w", size, err)
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	if !b.cfg.Range.Contains(addr, size) {
		unix.Munmap(data)
		return nil, 0, &ErrOutsideRange{Addr: addr, Size: size, Range: b.cfg.Range}
	}
	return &Chunk{Addr: addr, Size: size}, size, nil
}

func (b *mmapBackend) FreeChunk(c *Chunk) error {
	return unix.Munmap(c.Data())
}

func (b *mmapBackend) GrowNursery(oldPtr uintptr, oldSize, newSize uintptr) (uintptr, error) {
	newSize = pageRound(newSize)
	if oldPtr == 0 {
		data, err := mmapHinted(b.cfg.PreferredNurseryBase, newSize)
		if err != nil {
			return 0, fmt.Errorf("heapregion: mmap nursery %d bytes: %w", newSize, err)
		}
		addr := uintptr(unsafe.Pointer(&data[0]))
		if !b.cfg.Range.Contains(addr, newSize) {
			unix.Munmap(data)
			return 0, &ErrOutsideRange{Addr: addr, Size: newSize, Range: b.cfg.Range}
		}
		return addr, nil
	}
	oldData := unsafe.Slice((*byte)(unsafe.Pointer(oldPtr)), oldSize)
	newData, err := unix.Mremap(oldData, int(newSize), unix.MREMAP_MAYMOVE)
	if err != nil {
		return 0, fmt.Errorf("heapregion: mremap %d -> %d bytes: %w", oldSize, newSize, err)
	}
	addr := uintptr(unsafe.Pointer(&newData[0]))
	if !b.cfg.Range.Contains(addr, newSize) {
		return 0, &ErrOutsideRange{Addr: addr, Size: newSize, Range: b.cfg.Range}
	}
	return addr, nil
}


func newPlatformDefault(cfg Config) Backend {
	return NewMmapBackend(cfg)
}
