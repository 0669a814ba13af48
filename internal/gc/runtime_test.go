// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"testing"

	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/heapregion"
	"golang.org/x/alorert/internal/nursery"
	"golang.org/x/alorert/internal/value"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	b := heapregion.NewPortableBackend(heapregion.Config{})
	old := falloc.New(b, 0)
	nur, err := nursery.New(b, 4096)
	if err != nil {
		t.Fatalf("nursery.New: %v", err)
	}
	return NewRuntime(old, nur)
}

func TestCollectNewGenPromotesReachableChain(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	valB, err := r.AllocNursery(th, 2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("alloc B: %v", err)
	}
	valA, err := r.AllocNursery(th, 2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("alloc A: %v", err)
	}
	// A's first field points at B.
	aBody := value.RefAddr(valA) + wordSize
	writeWord(aBody, valB)

	th.Stack = append(th.Stack, valA)

	if err := r.CollectNewGen(); err != nil {
		t.Fatalf("CollectNewGen: %v", err)
	}

	newValA := th.Stack[len(th.Stack)-1]
	if r.nursery.Contains(value.RefAddr(newValA)) {
		t.Errorf("A should have been promoted out of the nursery")
	}
	newAAddr := value.RefAddr(newValA)
	newValB := readWord(newAAddr + wordSize)
	if r.nursery.Contains(value.RefAddr(newValB)) {
		t.Errorf("B should have been promoted transitively through A's field")
	}
	if !value.IsRef(newValB) {
		t.Errorf("A's field should still be a valid reference after promotion")
	}
}

func TestCollectNewGenAdoptsBigBlock(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	big, err := r.AllocNursery(th, nursery.BigBlockThreshold+64, value.KindNonPointer)
	if err != nil {
		t.Fatalf("alloc big: %v", err)
	}
	th.Stack = append(th.Stack, big)
	origAddr := value.RefAddr(big)

	if err := r.CollectNewGen(); err != nil {
		t.Fatalf("CollectNewGen: %v", err)
	}

	got := th.Stack[len(th.Stack)-1]
	if value.RefAddr(got) != origAddr {
		t.Errorf("adopted big block should keep its address: got %#x, want %#x", value.RefAddr(got), origAddr)
	}
	if r.nursery.Contains(origAddr) {
		t.Errorf("nursery should no longer claim the adopted block's address")
	}
}

func TestWriteBarrierRecordsRememberedSet(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	oldVal, err := r.AllocOld(2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocOld: %v", err)
	}
	youngVal, err := r.AllocNursery(th, 2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocNursery: %v", err)
	}

	slot := value.RefAddr(oldVal) + wordSize
	writeWord(slot, youngVal)
	r.writeBarrier(th, slot, youngVal)

	if len(th.NewGenRefs) != 1 {
		t.Fatalf("expected 1 remembered-set entry, got %d", len(th.NewGenRefs))
	}

	th.Stack = append(th.Stack, oldVal) // only root keeping the chain alive
	if err := r.CollectNewGen(); err != nil {
		t.Fatalf("CollectNewGen: %v", err)
	}

	fieldVal := readWord(slot)
	if r.nursery.Contains(value.RefAddr(fieldVal)) {
		t.Errorf("young object reachable only via remembered set should have been promoted")
	}
	if len(th.NewGenRefs) != 0 {
		t.Errorf("remembered set should be drained after a young collection")
	}
}

func TestForceFullCollectionSweepsUnreachable(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	keep, err := r.AllocOld(2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocOld keep: %v", err)
	}
	_, err = r.AllocOld(2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocOld garbage: %v", err)
	}
	th.Stack = append(th.Stack, keep)

	if err := r.ForceFullCollection(); err != nil {
		t.Fatalf("ForceFullCollection: %v", err)
	}

	stats := r.Stats()
	if stats.ObjectsSwept == 0 {
		t.Errorf("expected at least one swept object")
	}

	if violations := Verify(r.old); len(violations) != 0 {
		t.Errorf("Verify found violations after collection: %v", violations)
	}
}
