// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"sync"

	"golang.org/x/alorert/internal/value"
)

// Finalizer pairs a registered object with the finalizer routine to call
// once it is found unreachable (spec.md §4.7).
type Finalizer struct {
	Obj value.Value
	Fn  value.Value
}

// Finalizers tracks per-generation finalizer registrations plus the
// queue of finalizers whose objects have died and are ready to run.
// Split the same way IdentityHash is split, for the same reason: young
// and old objects are discovered dead by two different collectors that
// run on two different schedules.
type Finalizers struct {
	mu      sync.Mutex
	young   map[uintptr]Finalizer
	old     map[uintptr]Finalizer
	pending []Finalizer
}

// NewFinalizers creates an empty finalizer tracker.
func NewFinalizers() *Finalizers {
	return &Finalizers{
		young: make(map[uintptr]Finalizer),
		old:   make(map[uintptr]Finalizer),
	}
}

// Register records fn as obj's finalizer. addr is obj's current header
// address, passed separately so callers that already decoded it do not
// have to re-decode the tag.
func (f *Finalizers) Register(addr uintptr, obj, fn value.Value, inNursery bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inNursery {
		f.young[addr] = Finalizer{Obj: obj, Fn: fn}
	} else {
		f.old[addr] = Finalizer{Obj: obj, Fn: fn}
	}
}

// Promote carries a finalizer registration from the young table to the
// old table when its object is promoted out of the nursery.
func (f *Finalizers) Promote(oldAddr, newAddr uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fin, ok := f.young[oldAddr]; ok {
		delete(f.young, oldAddr)
		fin.Obj = rewrap(fin.Obj, newAddr)
		f.old[newAddr] = fin
	}
}

// SweepYoung drops (and queues for execution) the finalizers of any
// young object not found in forwarded, called once per young collection
// after the copying collector has finished promoting survivors.
func (f *Finalizers) SweepYoung(forwarded map[uintptr]uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for addr, fin := range f.young {
		if _, ok := forwarded[addr]; ok {
			continue // Promote already moved this one to f.old
		}
		f.pending = append(f.pending, fin)
		delete(f.young, addr)
	}
}

// SweepOld drops (and queues for execution) the finalizers of any old
// object the mark phase did not find live, called by the sweeper.
func (f *Finalizers) SweepOld(isLive func(addr uintptr) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for addr, fin := range f.old {
		if isLive(addr) {
			continue
		}
		f.pending = append(f.pending, fin)
		delete(f.old, addr)
	}
}

// TakePending drains and returns every finalizer now ready to run. The
// caller (the interpreter, outside the core) is responsible for actually
// invoking Fn with Obj as an argument, and for re-registering a
// finalizer that re-registers itself.
func (f *Finalizers) TakePending() []Finalizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}
