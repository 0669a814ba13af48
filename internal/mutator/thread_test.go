// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mutator

import (
	"testing"
	"time"

	"golang.org/x/alorert/internal/value"
)

func TestPushPopTemp(t *testing.T) {
	th := New(0, 16, 16)
	i := th.PushTemp(value.MakeShortInt(42))
	if i != 0 {
		t.Fatalf("PushTemp index = %d, want 0", i)
	}
	th.PushTemp(value.MakeShortInt(7))
	th.PopTemp(1)
	if len(th.Temps) != 1 {
		t.Fatalf("len(Temps) = %d, want 1", len(th.Temps))
	}
}

func TestExceptionFrameStack(t *testing.T) {
	th := New(0, 0, 0)
	if _, ok := th.PopExceptionFrame(); ok {
		t.Fatalf("PopExceptionFrame on empty stack should fail")
	}
	th.PushExceptionFrame(ExceptionFrame{Kind: "finally", Depth: 1})
	f, ok := th.PopExceptionFrame()
	if !ok || f.Kind != "finally" {
		t.Fatalf("unexpected frame: %+v, ok=%v", f, ok)
	}
}

func TestRootsStopsAtSentinel(t *testing.T) {
	th := New(0, 4, 0)
	th.Stack = append(th.Stack, value.MakeShortInt(1), stackBottom, value.MakeShortInt(99))
	var seen []value.Value
	th.Roots(func(v *value.Value) { seen = append(seen, *v) })
	if len(seen) != 2 {
		t.Fatalf("Roots scanned %d entries, want 2 (stopped at sentinel)", len(seen))
	}
}

func TestInterruptLatch(t *testing.T) {
	th := New(0, 0, 0)
	if th.TakeInterrupt() {
		t.Fatalf("TakeInterrupt should be false with no pending interrupt")
	}
	th.RequestInterrupt()
	if !th.TakeInterrupt() {
		t.Fatalf("TakeInterrupt should report the pending interrupt")
	}
	if th.TakeInterrupt() {
		t.Fatalf("interrupt should be consumed after first TakeInterrupt")
	}
}

func TestStopTheWorldSkipsBlockingThreads(t *testing.T) {
	l := NewList()
	a := l.Register(4, 4)
	b := l.Register(4, 4)
	b.EnterBlocking()

	resume := l.StopTheWorld()

	done := make(chan struct{})
	go func() {
		a.SafePoint()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("frozen thread's SafePoint returned before resume")
	case <-time.After(20 * time.Millisecond):
	}

	// Blocking thread should not be frozen; ExitBlocking calls SafePoint
	// but should return immediately since b was never frozen.
	b.ExitBlocking()

	resume()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("resume() did not unblock frozen thread")
	}
}
