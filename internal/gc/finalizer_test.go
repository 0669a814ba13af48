// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"testing"

	"golang.org/x/alorert/internal/value"
)

func TestFinalizersSweepYoung(t *testing.T) {
	f := NewFinalizers()
	f.Register(0x1000, value.MakeRef(0x1000), value.MakeRef(0x9000), true)
	f.Register(0x2000, value.MakeRef(0x2000), value.MakeRef(0x9000), true)

	forwarded := map[uintptr]uintptr{0x1000: 0x5000}
	f.SweepYoung(forwarded)

	pending := f.TakePending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending finalizer (for the dead object), got %d", len(pending))
	}
	if value.RefAddr(pending[0].Obj) != 0x2000 {
		t.Errorf("pending finalizer for wrong object: %#x", value.RefAddr(pending[0].Obj))
	}
	if _, ok := f.young[0x1000]; ok {
		t.Errorf("survivor's finalizer should have left the young table")
	}
}

func TestFinalizersPromoteCarriesRegistration(t *testing.T) {
	f := NewFinalizers()
	f.Register(0x1000, value.MakeRef(0x1000), value.MakeRef(0x9000), true)
	f.Promote(0x1000, 0x6000)

	if _, ok := f.young[0x1000]; ok {
		t.Errorf("Promote should remove the young entry")
	}
	fin, ok := f.old[0x6000]
	if !ok {
		t.Fatalf("Promote should add an old entry at the new address")
	}
	if value.RefAddr(fin.Obj) != 0x6000 {
		t.Errorf("promoted finalizer's Obj should be rewritten to the new address")
	}
}

func TestFinalizersSweepOld(t *testing.T) {
	f := NewFinalizers()
	f.Register(0x1000, value.MakeRef(0x1000), value.MakeRef(0x9000), false)
	f.Register(0x2000, value.MakeRef(0x2000), value.MakeRef(0x9000), false)

	f.SweepOld(func(addr uintptr) bool { return addr == 0x1000 })
	pending := f.TakePending()
	if len(pending) != 1 || value.RefAddr(pending[0].Obj) != 0x2000 {
		t.Fatalf("unexpected pending finalizers: %+v", pending)
	}
	if len(f.TakePending()) != 0 {
		t.Errorf("TakePending should drain the queue")
	}
}
