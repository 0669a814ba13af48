// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"fmt"

	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/nursery"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// MarkStepBudget is the default number of gray objects processed per
// incremental mark/sweep step, matching the original's policy of pacing
// the old collector against allocation rather than running it to
// completion in one pause (spec.md §4.5.3).
const MarkStepBudget = 256

// OldGenAllocTrigger is the fraction of the old generation's current size
// that, once allocated since the last collection finished, starts a new
// incremental collection cycle (spec.md §4.5.3's "start when old
// generation occupancy grows by roughly its own size since last cycle").
const OldGenAllocTrigger = 1.0

// Runtime ties together the allocator, nursery, mutator thread registry,
// identity hash tables and finalizer queues into the single object the
// rest of the core allocates through (spec.md §6's "runtime" facade).
type Runtime struct {
	old     *falloc.Allocator
	nursery *nursery.Nursery
	threads *mutator.List

	idhash     *IdentityHash
	finalizers *Finalizers

	oldGC             *oldCollector
	bytesAllocedSince uintptr // old-gen bytes allocated since oldGC last finished

	gcStats Stats
}

// NewRuntime creates a Runtime over an already-constructed allocator and
// nursery, with a fresh, empty thread registry.
func NewRuntime(old *falloc.Allocator, nur *nursery.Nursery) *Runtime {
	return &Runtime{
		old:        old,
		nursery:    nur,
		threads:    mutator.NewList(),
		idhash:     NewIdentityHash(),
		finalizers: NewFinalizers(),
	}
}

// Threads exposes the mutator thread registry, so callers can register
// new threads and look up roots for inspection tools (gcdump).
func (r *Runtime) Threads() *mutator.List { return r.threads }

// IdentityHash exposes the collector's identity hash tables, so the
// alorert facade can wire internal/value.RefIdentityHash without this
// package importing value.HashValue's dispatch layer itself.
func (r *Runtime) IdentityHash() *IdentityHash { return r.idhash }

// Nursery exposes the young generation, for the same reason (checking
// whether a float box still lives in the nursery, when computing its
// identity hash).
func (r *Runtime) Nursery() *nursery.Nursery { return r.nursery }

// Allocator exposes the old-generation free-list allocator, for tools
// (cmd/alorertool heapstat/bench) and the debug verifier's external entry
// point.
func (r *Runtime) Allocator() *falloc.Allocator { return r.old }

// Finalizers exposes the collector's finalizer tracker, so the alorert
// facade can offer registration and pending-dispatch without this
// package importing the facade's notion of "instance".
func (r *Runtime) Finalizers() *Finalizers { return r.finalizers }

// Stats returns a snapshot of collector counters.
func (r *Runtime) Stats() Stats { return r.gcStats }

// KindOf reads the block kind of the object v refers to. The caller must
// have already checked value.IsRef(v); passing a short-int, float, or
// constant Value reads whatever header-shaped bits happen to sit at an
// unrelated address and is the caller's bug, not this method's to guard
// against (mirrors the original's own unchecked AValueKind macro).
func (r *Runtime) KindOf(v value.Value) value.Kind {
	return readHeader(value.RefAddr(v)).KindOf()
}

// errOutOfMemory builds the core's out-of-memory sentinel for a failed
// allocation of the given size, reusing internal/rterror's Memory kind so
// callers across packages can test for it with errors.Is uniformly.
func errOutOfMemory(size uintptr) error {
	return fmt.Errorf("gc: out of memory allocating %d bytes: %w", size, rterror.ErrOutOfMemory)
}

// AllocNursery services a nursery allocation request from th, refilling
// th's private slab as needed and triggering a young collection if the
// nursery has no room left. Objects at or above
// nursery.BigBlockThreshold go straight to the big-block list instead of
// a slab (spec.md §4.4).
func (r *Runtime) AllocNursery(th *mutator.Thread, size uintptr, k value.Kind) (value.Value, error) {
	total := size + wordSize

	if total >= nursery.BigBlockThreshold {
		addr, ok := r.nursery.AllocBigBlock(size)
		if !ok {
			if err := r.CollectNewGen(); err != nil {
				return 0, err
			}
			addr, ok = r.nursery.AllocBigBlock(size)
			if !ok {
				return 0, errOutOfMemory(size)
			}
		}
		writeHeader(addr, value.MakeHeader(k, size))
		return value.MakeRef(addr), nil
	}

	if th.HeapPtr+total > th.HeapEnd {
		slab, ok := r.nursery.RefillSlab(total)
		if !ok {
			if err := r.CollectNewGen(); err != nil {
				return 0, err
			}
			slab, ok = r.nursery.RefillSlab(total)
			if !ok {
				return 0, errOutOfMemory(size)
			}
		}
		th.HeapPtr, th.HeapEnd = slab.Ptr, slab.End
	}

	addr := th.HeapPtr
	writeHeader(addr, value.MakeHeader(k, size))
	th.HeapPtr += total
	return value.MakeRef(addr), nil
}

// CollectNewGen runs a young-generation collection, stopping the world
// for its duration.
func (r *Runtime) CollectNewGen() error {
	resume := r.threads.StopTheWorld()
	defer resume()
	r.old.Lock()
	defer r.old.Unlock()
	return r.collectNewGen()
}

// drainRememberedSets promotes every object reachable only through a
// thread's remembered set (old->young pointer stores recorded by the
// write barrier), then clears each thread's list: every surviving
// reference has now been updated in place by promote, so the old-gen
// slot already holds the post-collection address and does not need to
// be remembered again unless written to anew.
func (r *Runtime) drainRememberedSets(yc *youngCollector) error {
	var promoteErr error
	r.threads.Each(func(th *mutator.Thread) {
		for i := range th.NewGenRefs {
			if promoteErr != nil {
				return
			}
			ref := &th.NewGenRefs[i]
			// The value actually stored at Slot may have changed since
			// the barrier recorded this entry (a later write can
			// overwrite the same slot); re-read it so a stale entry
			// does not resurrect an address nothing points to anymore.
			cur := readWord(ref.Slot)
			if cur != ref.Value {
				continue
			}
			nv, err := yc.promote(cur)
			if err != nil {
				promoteErr = err
				return
			}
			if nv != cur {
				writeWord(ref.Slot, nv)
			}
		}
		th.NewGenRefs = th.NewGenRefs[:0]
	})
	return promoteErr
}

// AllocOld services an explicit old-generation allocation request
// (spec.md §4.3/§6: objects the interpreter marks as long-lived, or
// static data, are allocated directly into the old generation instead of
// the nursery). It adds the forced-collection retry
// internal/falloc.Allocator.AllocLocked deliberately leaves out.
func (r *Runtime) AllocOld(size uintptr, k value.Kind) (value.Value, error) {
	r.old.Lock()
	addr, ok := r.old.Alloc(size + wordSize)
	if !ok {
		// Growing is far cheaper than a full collection and, absent a
		// configured heap cap, always succeeds; only fall back to
		// forcing a collection (below) once growth itself is refused.
		if err := r.old.GrowHeapLocked(size + wordSize); err == nil {
			addr, ok = r.old.Alloc(size + wordSize)
		}
	}
	r.old.Unlock()
	if ok {
		writeHeader(addr, value.MakeHeader(k, size))
		r.noteOldAlloc(size)
		return value.MakeRef(addr), nil
	}

	if err := r.ForceFullCollection(); err != nil {
		return 0, err
	}

	r.old.Lock()
	addr, ok = r.old.Alloc(size + wordSize)
	r.old.Unlock()
	if !ok {
		return 0, errOutOfMemory(size)
	}
	writeHeader(addr, value.MakeHeader(k, size))
	r.noteOldAlloc(size)
	return value.MakeRef(addr), nil
}

func (r *Runtime) noteOldAlloc(size uintptr) {
	r.old.Lock()
	defer r.old.Unlock()
	r.bytesAllocedSince += size
	if r.oldGC == nil && float64(r.bytesAllocedSince) >= float64(r.old.HeapSize())*OldGenAllocTrigger {
		r.bytesAllocedSince = 0
		r.startMark()
	}
}

// StepOldGen advances the incremental old-generation collector by one
// bounded slice of work, if a cycle is in progress. Callers invoke this
// from mutator safe points (spec.md §5); it is a no-op between cycles.
// The world is not stopped for MARK steps (concurrent mutation is exactly
// what the write barrier exists to handle); SWEEP and the MARK->SWEEP
// transition do stop the world, since sweep rewrites free-list state the
// allocator is not safe to touch concurrently.
func (r *Runtime) StepOldGen(budget int) error {
	r.old.Lock()
	oc := r.oldGC
	if oc == nil {
		r.old.Unlock()
		return nil
	}

	switch oc.state {
	case StateMark:
		done := r.stepMark(budget)
		if done {
			oc.state = StateMarkExe
		}
		r.old.Unlock()
	case StateMarkExe:
		// Final exhaustive pass: anything the write barrier shaded while
		// MARK was finishing up is still sitting in gray. Drain it fully
		// before moving to SWEEP, since any object left unmarked here is
		// permanently lost.
		for len(oc.gray) > 0 {
			r.stepMark(len(oc.gray))
		}
		r.old.Unlock()
		resume := r.threads.StopTheWorld()
		r.beginSweep()
		resume()
	case StateSweep:
		done := r.stepSweep(budget)
		if done {
			r.finishOldCollection()
		}
		r.old.Unlock()
	}
	return nil
}

// ForceFullCollection runs a young collection followed by a complete
// old-generation mark-sweep cycle to completion, used when an allocation
// cannot be satisfied and there is no time left to let the incremental
// collector catch up on its own schedule.
func (r *Runtime) ForceFullCollection() error {
	if err := r.CollectNewGen(); err != nil {
		return err
	}
	r.old.Lock()
	if r.oldGC == nil {
		r.startMark()
	}
	r.old.Unlock()
	for {
		if err := r.StepOldGen(1 << 30); err != nil {
			return err
		}
		r.old.Lock()
		done := r.oldGC == nil
		r.old.Unlock()
		if done {
			return nil
		}
	}
}
