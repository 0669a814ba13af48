// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"testing"

	"golang.org/x/alorert/internal/value"
)

func TestStepOldGenIncrementalBudget(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	const n = 20
	var last value.Value
	for i := 0; i < n; i++ {
		v, err := r.AllocOld(2*wordSize, value.KindValue)
		if err != nil {
			t.Fatalf("AllocOld #%d: %v", i, err)
		}
		if last != 0 {
			writeWord(value.RefAddr(v)+wordSize, last)
		}
		last = v
	}
	th.Stack = append(th.Stack, last)

	r.old.Lock()
	r.startMark()
	r.old.Unlock()

	// A budget of 1 should take more than one step to exhaust a chain of
	// n linked objects.
	steps := 0
	for {
		if err := r.StepOldGen(1); err != nil {
			t.Fatalf("StepOldGen: %v", err)
		}
		steps++
		r.old.Lock()
		done := r.oldGC == nil
		r.old.Unlock()
		if done {
			break
		}
		if steps > 10*n {
			t.Fatalf("StepOldGen never finished after %d steps", steps)
		}
	}
	if steps < n {
		t.Errorf("expected at least %d incremental steps for a %d-object chain, got %d", n, n, steps)
	}

	if violations := Verify(r.old); len(violations) != 0 {
		t.Errorf("Verify found violations after incremental collection: %v", violations)
	}
}

func TestWriteBarrierShadesDuringMark(t *testing.T) {
	r := newTestRuntime(t)
	th := r.Threads().Register(8, 8)

	root, err := r.AllocOld(2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocOld root: %v", err)
	}
	th.Stack = append(th.Stack, root)

	r.old.Lock()
	r.startMark()
	// Mark root itself black without scanning its fields yet, simulating
	// a mutator that is ahead of the collector.
	r.oldGC.marked[value.RefAddr(root)] = true
	r.old.Unlock()

	late, err := r.AllocOld(2*wordSize, value.KindValue)
	if err != nil {
		t.Fatalf("AllocOld late: %v", err)
	}
	slot := value.RefAddr(root) + wordSize
	writeWord(slot, late)
	r.writeBarrier(th, slot, late)

	r.old.Lock()
	shaded := r.oldGC.marked[value.RefAddr(late)]
	r.old.Unlock()
	if !shaded {
		t.Errorf("write barrier should have shaded the newly stored reference")
	}
}
