// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/runtimelog"
	"golang.org/x/alorert/internal/value"
)

// MarkState is the old-generation collector's incremental state machine
// (spec.md §4.5.3): NONE between collections, MARK while tracing from
// roots, MARKEXE for the final exhaustive re-scan that accounts for
// mutation during MARK, SWEEP while reclaiming unmarked blocks.
type MarkState int

const (
	StateNone MarkState = iota
	StateMark
	StateMarkExe
	StateSweep
)

func (s MarkState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateMark:
		return "mark"
	case StateMarkExe:
		return "mark-exe"
	case StateSweep:
		return "sweep"
	default:
		return "unknown"
	}
}

// oldCollector holds the incremental mark-sweep collector's state across
// Step calls. Its lifetime spans exactly one collection cycle (NONE ->
// MARK -> MARKEXE -> SWEEP -> NONE).
type oldCollector struct {
	state  MarkState
	marked map[uintptr]bool
	gray   []uintptr

	sweepCursor uintptr // next chunk address to examine during SWEEP
	sweepChunk  *uintptrChunk
}

// uintptrChunk is the subset of heapregion.Chunk the sweeper needs,
// named locally to avoid an import cycle back through falloc for the
// small amount of information actually required.
type uintptrChunk struct {
	Addr, Size uintptr
	Next       *uintptrChunk
}

// startMark begins a new old-generation collection: the gray set is
// seeded with every old-generation reference reachable from mutator
// roots. Must be called with the world stopped.
func (r *Runtime) startMark() {
	oc := &oldCollector{marked: make(map[uintptr]bool), state: StateMark}

	seed := func(v *value.Value) {
		if !value.IsRef(*v) && !value.IsFloat(*v) {
			return
		}
		addr := refOrFloatAddr(*v)
		if r.nursery.Contains(addr) {
			return // young objects are the copying collector's problem
		}
		if !oc.marked[addr] {
			oc.marked[addr] = true
			oc.gray = append(oc.gray, addr)
		}
	}
	r.threads.RootsAll(seed)

	r.oldGC = oc
	runtimelog.Printf("gc: old generation mark started, %d root(s) gray", len(oc.gray))
}

// refOrFloatAddr extracts an address from either a plain or float
// reference, returning 0 for anything else.
func refOrFloatAddr(v value.Value) uintptr {
	switch {
	case value.IsRef(v):
		return value.RefAddr(v)
	case value.IsFloat(v):
		return value.FloatAddr(v)
	default:
		return 0
	}
}

// stepMark processes up to budget gray objects, scanning their fields and
// marking any old-generation objects they reference, and reports whether
// the gray queue is now empty (spec.md §4.5.3's "do a bounded slice of
// work per allocation/safe point" incremental policy).
func (r *Runtime) stepMark(budget int) (done bool) {
	oc := r.oldGC
	for budget > 0 && len(oc.gray) > 0 {
		addr := oc.gray[len(oc.gray)-1]
		oc.gray = oc.gray[:len(oc.gray)-1]
		h := readHeader(addr)
		r.gcStats.BytesMarked += uint64(h.Size())
		scanFields(addr, h.KindOf(), h.Size(), func(slot uintptr) {
			v := readWord(slot)
			a := refOrFloatAddr(v)
			if a == 0 || r.nursery.Contains(a) {
				return
			}
			if !oc.marked[a] {
				oc.marked[a] = true
				oc.gray = append(oc.gray, a)
			}
		})
		budget--
	}
	return len(oc.gray) == 0
}

// beginSweep transitions into SWEEP, resetting the allocator's free lists
// and bias cursor since sweep is about to rebuild them from a fresh
// left-to-right walk of every chunk (spec.md §4.3's InvalidateBias /
// ResetFreeLists contract).
func (r *Runtime) beginSweep() {
	r.old.Lock()
	r.old.InvalidateBias()
	r.old.ResetFreeLists()
	r.old.Unlock()

	c := r.old.Chunks()
	var head, tail *uintptrChunk
	for ; c != nil; c = c.Next {
		n := &uintptrChunk{Addr: c.Addr, Size: c.Size}
		if head == nil {
			head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	r.oldGC.state = StateSweep
	r.oldGC.sweepChunk = head
	if head != nil {
		r.oldGC.sweepCursor = head.Addr
	}
}

// stepSweep walks up to budget blocks of the current sweep chunk,
// freeing unmarked ones and leaving marked ones in place, and reports
// whether sweeping has finished every chunk. The mark set is left intact
// for finishOldCollection and is discarded with the cycle's collector
// state.
func (r *Runtime) stepSweep(budget int) (done bool) {
	oc := r.oldGC
	for budget > 0 {
		if oc.sweepChunk == nil {
			return true
		}
		if oc.sweepCursor >= oc.sweepChunk.Addr+oc.sweepChunk.Size {
			oc.sweepChunk = oc.sweepChunk.Next
			if oc.sweepChunk == nil {
				return true
			}
			oc.sweepCursor = oc.sweepChunk.Addr
			continue
		}
		addr := oc.sweepCursor
		h := readHeader(addr)
		size := h.Size()
		if size == 0 {
			// Defensive: a corrupted or not-yet-initialized header would
			// otherwise spin the sweeper forever.
			return true
		}
		if !oc.marked[addr] {
			// Free takes the block's full physical span (header word
			// included), matching every other falloc free-block
			// convention; size here is payload only.
			r.old.Free(addr, size+wordSize)
			r.gcStats.BytesSwept += uint64(size)
			r.gcStats.ObjectsSwept++
		}
		oc.sweepCursor += size + wordSize
		budget--
	}
	return false
}

// finishOldCollection reclaims finalizers/identity hashes for objects the
// sweep just freed and retires the cycle's collector state.
func (r *Runtime) finishOldCollection() {
	isLive := func(addr uintptr) bool { return r.oldGC.marked[addr] }
	r.idhash.SweepOld(isLive)
	r.finalizers.SweepOld(isLive)
	r.oldGC = nil
	r.gcStats.OldCollections++
	runtimelog.Printf("gc: old generation collection finished, %d bytes swept", r.gcStats.BytesSwept)
}

// WriteBarrier is writeBarrier's exported form, the entry point the
// alorert facade calls for every mutator store into heap-resident memory
// (spec.md §6's modify-object/modify-old-gen).
func (r *Runtime) WriteBarrier(th *mutator.Thread, slotAddr uintptr, v value.Value) {
	writeWord(slotAddr, v)
	r.writeBarrier(th, slotAddr, v)
}

// writeBarrier implements spec.md §4.5.4's pair of barriers:
//
//  1. Dijkstra insertion barrier: during MARK/MARKEXE, storing a
//     reference to an unmarked old-generation object through any
//     old-generation slot immediately shades the new referent, so the
//     collector never loses track of an object a concurrent mutation
//     made reachable.
//  2. Remembered-set barrier: storing a young reference through any
//     old-generation slot records the store so the next young collection
//     treats it as a root, since old-generation objects are not
//     otherwise rescanned by the copying collector.
//
// The write happens first (WriteBarrier performs it before calling
// here) so th.NewGenRefs always reflects the value
// actually stored, then the barrier re-reads the slot before recording
// it (the "double re-check" spec.md §4's Open Questions flagged): between
// the write and the barrier running, nothing else can have touched this
// thread's own slot, but the re-read guards the barrier against being
// handed a stale (v, slotAddr) pair by a caller that batches writes.
func (r *Runtime) writeBarrier(th *mutator.Thread, slotAddr uintptr, v value.Value) {
	if !value.IsRef(v) && !value.IsFloat(v) {
		return
	}
	if r.nursery.Contains(slotAddr) {
		return // young objects are never a write-barrier source
	}

	// Re-check: confirm the slot still holds the value the caller wrote.
	// A caller that races this call with another barrier invocation on
	// the same slot (e.g. via an aliasing bug) must not cause the
	// remembered set or mark queue to record a value no longer stored.
	if readWord(slotAddr) != v {
		return
	}

	addr := refOrFloatAddr(v)
	if r.nursery.Contains(addr) {
		th.NewGenRefs = append(th.NewGenRefs, mutator.NewGenRef{Slot: slotAddr, Value: v})
		r.gcStats.RememberEvents++
		return
	}

	r.old.Lock()
	defer r.old.Unlock()
	if oc := r.oldGC; oc != nil && (oc.state == StateMark || oc.state == StateMarkExe) {
		if !oc.marked[addr] {
			oc.marked[addr] = true
			oc.gray = append(oc.gray, addr)
			r.gcStats.ShadeEvents++
		}
	}
}
