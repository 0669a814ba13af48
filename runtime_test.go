// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import "testing"

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(Config{NurserySize: 4096, SmallIntCacheRange: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rt
}

func TestNewBuildsUsableRuntime(t *testing.T) {
	rt := newTestRuntime(t)
	th := rt.NewThread(8, 4)
	defer rt.DropThread(th)

	if rt.HeapSize() != 0 {
		t.Errorf("fresh runtime should have a zero-size old generation, got %d", rt.HeapSize())
	}
}

func TestAllocReturnsDistinctValues(t *testing.T) {
	rt := newTestRuntime(t)
	th := rt.NewThread(8, 4)
	defer rt.DropThread(th)

	a, err := rt.Alloc(th, 16, KindNonPointer)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := rt.Alloc(th, 16, KindNonPointer)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}
	if a == b {
		t.Errorf("two allocations should not produce the same Value, got %v twice", a)
	}
}

func TestCollectAllGarbageSurvivesRootedValue(t *testing.T) {
	rt := newTestRuntime(t)
	th := rt.NewThread(8, 4)
	defer rt.DropThread(th)

	v, err := rt.Alloc(th, 16, KindNonPointer)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	th.PushValue(v)

	if err := rt.CollectAllGarbage(); err != nil {
		t.Fatalf("CollectAllGarbage: %v", err)
	}

	survivor := th.StackTop(0)
	if IsNilValue(survivor) {
		t.Errorf("rooted value should survive a full collection")
	}
}

func TestSmallIntCacheRangeRespected(t *testing.T) {
	rt := newTestRuntime(t)

	if _, ok := rt.SmallInt(2); !ok {
		t.Errorf("2 should be cached under SmallIntCacheRange=4")
	}
	if _, ok := rt.SmallInt(100); ok {
		t.Errorf("100 should fall outside SmallIntCacheRange=4")
	}
}

func TestStatsReflectCollections(t *testing.T) {
	rt := newTestRuntime(t)
	th := rt.NewThread(8, 4)
	defer rt.DropThread(th)

	before := rt.Stats()
	if err := rt.CollectAllGarbage(); err != nil {
		t.Fatalf("CollectAllGarbage: %v", err)
	}
	after := rt.Stats()

	if after.OldCollections <= before.OldCollections {
		t.Errorf("OldCollections should advance after a forced full collection: before=%d after=%d",
			before.OldCollections, after.OldCollections)
	}
}
