// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"fmt"
	"unsafe"

	"golang.org/x/alorert/internal/falloc"
)

// Alloc services a nursery allocation request on behalf of th (spec.md
// §6's alloc(thread, size)). Objects at or above the big-block threshold
// go straight to the nursery's big-block list; everything else comes
// from th's private bump slab, refilled or collected as needed.
func (r *Runtime) Alloc(th *Thread, size uintptr, k Kind) (Value, error) {
	return r.gc.AllocNursery(th.internalHandle(), size, k)
}

// AllocUnmovable allocates size bytes directly in the old generation
// (spec.md §6's alloc-unmovable): the block is GC-visible (marked and
// swept by the incremental collector, never copied) but never passes
// through the nursery, for callers that need a stable address from the
// moment of allocation.
func (r *Runtime) AllocUnmovable(size uintptr, k Kind) (Value, error) {
	return r.gc.AllocOld(size, k)
}

// AllocKeep allocates size bytes for th, exactly like Alloc. spec.md §6
// names this separately (alloc-keep) to call out that any GC the call
// triggers rescues th's existing roots — its value stack, temporaries,
// and remembered set — the same way every forced collection already
// does; a caller holding a value in no other root the core knows about
// must still push it with Thread.AllocTemp first. There is nothing this
// method does beyond Alloc.
func (r *Runtime) AllocKeep(th *Thread, size uintptr, k Kind) (Value, error) {
	return r.Alloc(th, size, k)
}

// Static is a handle to a block obtained from AllocStatic: raw old-
// generation memory with no value.Header and no GC visibility, for data
// the core keeps alive by a lifetime outside the mutator heap model (a
// symbol table entry owned by the interpreter, say, rather than a
// mutator value). Callers must track the block's size themselves, since
// there is no header to recover it from.
type Static struct {
	addr uintptr
	size uintptr
}

// Addr returns the block's address.
func (s Static) Addr() uintptr { return s.addr }

// Bytes views the block's memory as a byte slice, aliasing the
// underlying heap chunk; the slice must not outlive a FreeStatic or
// GrowStatic call against this block.
func (s Static) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s.addr)), s.size)
}

// AllocStatic allocates size bytes the garbage collector never scans or
// relocates (spec.md §6's alloc-static). Static blocks come from the
// same old-generation chunks as ordinary objects but carry no header, so
// a reference to one must never reach a mutator-visible Value slot.
func (r *Runtime) AllocStatic(size uintptr) (Static, error) {
	addr, err := r.old.AllocLocked(size)
	if err != nil {
		return Static{}, err
	}
	return Static{addr: addr, size: size}, nil
}

// GrowStatic grows a static block, copying its contents into a fresh
// block when it cannot be extended in place (this allocator never
// extends in place once a block has been handed out, so GrowStatic
// always allocates fresh and copies — matching spec.md §6's grow-static
// being a ptr-may-change operation).
func (r *Runtime) GrowStatic(s Static, newSize uintptr) (Static, error) {
	if newSize <= s.size {
		return Static{addr: s.addr, size: newSize}, nil
	}
	ns, err := r.AllocStatic(newSize)
	if err != nil {
		return Static{}, err
	}
	copy(ns.Bytes(), s.Bytes())
	r.FreeStatic(s)
	return ns, nil
}

// FreeStatic releases a static block (spec.md §6's free-static(ptr)).
func (r *Runtime) FreeStatic(s Static) {
	r.old.Lock()
	defer r.old.Unlock()
	r.old.Free(s.addr, falloc.RoundSize(s.size))
}

// TruncateBlock shrinks an already-allocated block from oldSize to
// newSize in place, returning the freed remainder to the allocator
// (spec.md §6's truncate-block(ptr, old-size, new-size)). addr is the
// block's body address (its header, if any, is unaffected).
func (r *Runtime) TruncateBlock(addr, oldSize, newSize uintptr) error {
	if newSize > oldSize {
		return fmt.Errorf("alorert: truncate-block grew from %d to %d bytes", oldSize, newSize)
	}
	oldRounded := falloc.RoundSize(oldSize)
	newRounded := falloc.RoundSize(newSize)
	if newRounded >= oldRounded {
		return nil
	}
	r.old.Lock()
	defer r.old.Unlock()
	r.old.Free(addr+newRounded, oldRounded-newRounded)
	return nil
}

// ModifyObject stores v into the slot at slotAddr and runs the write
// barrier (spec.md §6's modify-object(thread, header, slot, value)).
func (r *Runtime) ModifyObject(th *Thread, slotAddr uintptr, v Value) {
	r.gc.WriteBarrier(th.internalHandle(), slotAddr, v)
}

// ModifyOldGen is ModifyObject specialized for a slot already known to be
// in the old generation (spec.md §6's modify-old-gen); named separately
// because an interpreter's instance-field-store fast path often already
// knows this without re-deriving it from the header. The barrier itself
// performs the same check either way, so this is purely a documentation
// aid for call sites that want to record that knowledge.
func (r *Runtime) ModifyOldGen(th *Thread, slotAddr uintptr, v Value) {
	r.gc.WriteBarrier(th.internalHandle(), slotAddr, v)
}
