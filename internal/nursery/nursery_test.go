// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nursery

import (
	"testing"

	"golang.org/x/alorert/internal/heapregion"
)

func newTestNursery(t *testing.T) *Nursery {
	t.Helper()
	b := heapregion.NewPortableBackend(heapregion.Config{})
	n, err := New(b, 4096)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestRefillSlabNonOverlapping(t *testing.T) {
	n := newTestNursery(t)
	s1, ok := n.RefillSlab(SlabIncrement)
	if !ok {
		t.Fatalf("RefillSlab #1 failed")
	}
	s2, ok := n.RefillSlab(SlabIncrement)
	if !ok {
		t.Fatalf("RefillSlab #2 failed")
	}
	if s1.Ptr >= s2.Ptr && s2.Ptr < s1.End {
		t.Errorf("slabs overlap: %+v vs %+v", s1, s2)
	}
	if s2.Ptr != s1.End {
		t.Errorf("slab #2 should immediately follow slab #1: got %#x, want %#x", s2.Ptr, s1.End)
	}
}

func TestRefillSlabExhaustion(t *testing.T) {
	n := newTestNursery(t)
	count := 0
	for {
		if _, ok := n.RefillSlab(SlabIncrement); !ok {
			break
		}
		count++
		if count > 1000 {
			t.Fatalf("nursery never reported exhaustion")
		}
	}
	if count == 0 {
		t.Fatalf("expected at least one successful slab refill")
	}
}

func TestBigBlockLinkage(t *testing.T) {
	n := newTestNursery(t)
	addr, ok := n.AllocBigBlock(2048)
	if !ok {
		t.Fatalf("AllocBigBlock failed")
	}
	if addr == 0 {
		t.Fatalf("AllocBigBlock returned nil address")
	}
	head := n.BigBlocks()
	if head == nil || head.Addr+bigBlockNodeSize != addr {
		t.Fatalf("big block list head does not match allocated block")
	}
	if head.DataSize != 2048 {
		t.Errorf("DataSize = %d, want 2048", head.DataSize)
	}
}

func TestResetClearsBumpAndBigBlocks(t *testing.T) {
	n := newTestNursery(t)
	if _, ok := n.RefillSlab(SlabIncrement); !ok {
		t.Fatalf("RefillSlab failed")
	}
	if _, ok := n.AllocBigBlock(100); !ok {
		t.Fatalf("AllocBigBlock failed")
	}
	n.Reset()
	if n.bump != n.base {
		t.Errorf("Reset did not rewind bump pointer")
	}
	if n.BigBlocks() != nil {
		t.Errorf("Reset did not clear big block list")
	}
}

func TestGrowCapsAtMaxSize(t *testing.T) {
	n := newTestNursery(t)
	if err := n.Grow(MaxSize * 2); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if n.Size() != MaxSize {
		t.Errorf("Size() = %d, want capped at %d", n.Size(), MaxSize)
	}
}
