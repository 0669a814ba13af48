// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/nursery"
	"golang.org/x/alorert/internal/runtimelog"
	"golang.org/x/alorert/internal/value"
)

// youngCollector holds one young-generation collection's working state.
// This collector has no second semispace: every reachable nursery object
// is promoted directly into the old generation on its first collection
// (spec.md §4.5.2 describes this as the simplification a
// single-nursery-generation design makes over a classical two-semispace
// copying collector).
type youngCollector struct {
	nursery    *nursery.Nursery
	old        *falloc.Allocator
	idhash     *IdentityHash
	finalizers *Finalizers

	forwarded map[uintptr]uintptr // old nursery addr -> new old-gen addr
	gray      []uintptr           // old-gen addresses still needing their fields scanned
	bigBlock  map[uintptr]bool    // nursery addresses that are big-block objects

	bytesPromoted uint64 // folded into Runtime.gcStats once the cycle finishes
}

// collectNewGen runs one young-generation collection: every reachable
// nursery object is promoted into the old generation, live big blocks are
// adopted by reference, and the nursery is then reset to empty. Must be
// called with the world stopped and the old-generation heap lock held.
func (r *Runtime) collectNewGen() error {
	yc := &youngCollector{
		nursery:    r.nursery,
		old:        r.old,
		idhash:     r.idhash,
		finalizers: r.finalizers,
		forwarded:  make(map[uintptr]uintptr),
		bigBlock:   make(map[uintptr]bool),
	}
	const bigBlockNodeSize = 16 // must match internal/nursery.bigBlockNodeSize
	for n := yc.nursery.BigBlocks(); n != nil; n = n.Next {
		yc.bigBlock[n.Addr+bigBlockNodeSize] = true
	}

	var promoteErr error
	visit := func(slot *value.Value) {
		if promoteErr != nil {
			return
		}
		nv, err := yc.promote(*slot)
		if err != nil {
			promoteErr = err
			return
		}
		*slot = nv
	}

	r.threads.RootsAll(visit)
	if promoteErr != nil {
		return promoteErr
	}

	// Remembered-set roots: old-gen slots recorded by the write barrier
	// as holding a reference into the nursery (spec.md §4.5.4 second
	// barrier). Each thread's list is drained in full every collection;
	// stale entries (their referent already promoted by a slot visited
	// elsewhere) are harmless to re-promote, since promote is idempotent
	// via the forwarded map.
	if err := r.drainRememberedSets(yc); err != nil {
		return err
	}

	for len(yc.gray) > 0 {
		addr := yc.gray[len(yc.gray)-1]
		yc.gray = yc.gray[:len(yc.gray)-1]
		if err := yc.scanPromoted(addr); err != nil {
			return err
		}
	}

	yc.finalizers.SweepYoung(yc.forwarded)

	r.nursery.SetBigBlocks(nil)
	r.nursery.Reset()
	r.gcStats.YoungCollections++
	r.gcStats.BytesPromoted += yc.bytesPromoted
	runtimelog.Printf("gc: young collection promoted %d object(s), %d bytes", len(yc.forwarded), yc.bytesPromoted)
	return nil
}

// promote copies the nursery object v points to into the old generation
// (first use) or returns the address already recorded for it (subsequent
// uses of the same reference within this collection), per spec.md
// §4.5.2's forwarding-pointer scheme.
func (yc *youngCollector) promote(v value.Value) (value.Value, error) {
	if !value.IsRef(v) && !value.IsFloat(v) {
		return v, nil
	}
	addr := value.RefAddr(v)
	if value.IsFloat(v) {
		addr = value.FloatAddr(v)
	}
	if !yc.nursery.Contains(addr) {
		return v, nil // already in the old generation or a constant
	}

	if newAddr, ok := yc.forwarded[addr]; ok {
		return rewrap(v, newAddr), nil
	}

	h := readHeader(addr)
	if h.KindOf() == value.KindFree {
		// Already visited and forwarded this collection; the header was
		// overwritten with a forwarding marker (spec.md §4.5.2 step 3).
		// Nursery blocks are never genuinely free (only the old
		// generation has free lists), so KindFree here is unambiguous.
		fv := readWord(addr + value.ForwardedBodyOffset)
		return rewrap(v, value.RefAddr(fv)), nil
	}

	if yc.bigBlock[addr] {
		// Big blocks never move (spec.md §4.4): adopt the memory in
		// place by linking it into the old generation's chunk list
		// instead of copying its bytes.
		yc.old.AdoptChunk(addr, h.Size()+wordSize)
		yc.bytesPromoted += uint64(h.Size() + wordSize)
		yc.forwarded[addr] = addr
		yc.idhash.Promote(addr, addr)
		yc.finalizers.Promote(addr, addr)
		yc.gray = append(yc.gray, addr)
		return v, nil
	}

	size := h.Size()
	newAddr, ok := yc.old.Alloc(size + wordSize)
	if !ok {
		if err := yc.old.GrowHeapLocked(size + wordSize); err != nil {
			return 0, err
		}
		newAddr, ok = yc.old.Alloc(size + wordSize)
		if !ok {
			return 0, errOutOfMemory(size)
		}
	}
	copyBytes(newAddr, addr, size+wordSize)
	yc.bytesPromoted += uint64(size + wordSize)
	yc.forwarded[addr] = newAddr
	writeHeader(addr, value.ForwardingHeader(size))
	writeWord(addr+value.ForwardedBodyOffset, value.MakeRef(newAddr))
	yc.idhash.Promote(addr, newAddr)
	yc.finalizers.Promote(addr, newAddr)
	yc.gray = append(yc.gray, newAddr)
	return rewrap(v, newAddr), nil
}

// rewrap builds a new Value of the same representation (plain ref or
// float ref) as v but pointing at newAddr.
func rewrap(v value.Value, newAddr uintptr) value.Value {
	if value.IsFloat(v) {
		return value.MakeFloatRef(newAddr)
	}
	return value.MakeRef(newAddr)
}

// scanPromoted visits the fields of a just-promoted old-generation block,
// promoting any nursery references it still holds (spec.md §4.5.2 step
// 3's copy-queue processing, Cheney-style: the gray stack plays the role
// of the scan pointer sweeping through to-space).
func (yc *youngCollector) scanPromoted(addr uintptr) error {
	h := readHeader(addr)
	k := h.KindOf()
	var scanErr error
	scanFields(addr, k, h.Size(), func(slot uintptr) {
		if scanErr != nil {
			return
		}
		v := readWord(slot)
		nv, err := yc.promote(v)
		if err != nil {
			scanErr = err
			return
		}
		if nv != v {
			writeWord(slot, nv)
		}
	})
	return scanErr
}

// copyBytes performs a raw byte copy between two heap addresses.
func copyBytes(dst, src, n uintptr) {
	for i := uintptr(0); i < n; i += wordSize {
		writeRaw(dst+i, readRaw(src+i))
	}
}
