// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "sync"

// IdentityHash assigns and remembers per-object identity hash values
// (spec.md §4.6), split the same way the heap itself is split: a young
// table keyed by nursery address, rehashed (really: just re-keyed, since
// the value itself does not change) whenever its object is promoted or
// relocated, and an old table keyed by the address objects keep for the
// rest of their lifetime.
//
// Splitting the table mirrors the original's rationale: without it, every
// nursery collection would have to rewrite every hash table bucket that
// happened to reference a moved object, just like the heap's own
// remembered set problem.
type IdentityHash struct {
	mu      sync.Mutex
	young   map[uintptr]uint32
	old     map[uintptr]uint32
	counter uint32
}

// NewIdentityHash creates an empty identity hash table pair.
func NewIdentityHash() *IdentityHash {
	return &IdentityHash{
		young: make(map[uintptr]uint32),
		old:   make(map[uintptr]uint32),
	}
}

// splitmix advances the table's counter through a full-period sequence
// with reasonable bit dispersion, used instead of a system random source
// so identity hashes are reproducible within a run (useful for the
// debug verifier and for gcdump diffing).
func (h *IdentityHash) splitmix() uint32 {
	h.counter += 0x9e3779b9
	z := h.counter
	z = (z ^ (z >> 16)) * 0x85ebca6b
	z = (z ^ (z >> 13)) * 0xc2b2ae35
	return z ^ (z >> 16)
}

// HashOf returns addr's identity hash, assigning one on first use
// (spec.md §4.6: "identity hash values are computed lazily and cached on
// the object"). inNursery tells HashOf which table to consult, since an
// address may coincidentally collide between the two heaps across time.
func (h *IdentityHash) HashOf(addr uintptr, inNursery bool) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	table := h.old
	if inNursery {
		table = h.young
	}
	if v, ok := table[addr]; ok {
		return v
	}
	v := h.splitmix()
	table[addr] = v
	return v
}

// Promote carries a young object's identity hash across to its new
// address, whether that address is a fresh nursery slab slot (a same-
// generation relocation cannot happen in this collector, but the method
// stays generic) or an old-generation block. Called once per promoted
// object, from internal/gc's copying collector.
func (h *IdentityHash) Promote(oldAddr, newAddr uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.young[oldAddr]; ok {
		delete(h.young, oldAddr)
		h.old[newAddr] = v
	}
}

// SweepOld drops identity hash entries for old-generation addresses the
// last mark phase did not find live, called by the sweeper right before
// it frees the corresponding blocks.
func (h *IdentityHash) SweepOld(isLive func(addr uintptr) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for addr := range h.old {
		if !isLive(addr) {
			delete(h.old, addr)
		}
	}
}
