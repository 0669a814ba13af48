// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// Thread is a mutator thread's handle into the runtime (spec.md §3.4,
// §4.9, §6's "Thread roots" interface). All of Thread's methods except
// RequestInterrupt may only be called by the goroutine that owns it; the collector
// reads a Thread's state directly, and only during a stop-the-world
// pause.
type Thread struct {
	rt *Runtime
	th *mutator.Thread
}

// AllocTemp pushes v onto the thread's temporary slot array and returns
// its index, keeping v alive across any operation that may allocate
// (spec.md §6's alloc-temp).
func (t *Thread) AllocTemp(v value.Value) int {
	return t.th.PushTemp(v)
}

// FreeTemp pops n temporary slots (spec.md §6's free-temp).
func (t *Thread) FreeTemp(n int) {
	t.th.PopTemp(n)
}

// AllocTemps reserves n temporary slots at once, all initialized to nil,
// returning the index of the first (spec.md §6's alloc-temps).
func (t *Thread) AllocTemps(n int) int {
	first := len(t.th.Temps)
	for i := 0; i < n; i++ {
		t.th.PushTemp(value.ConstNil)
	}
	return first
}

// PushValue/PopValues manage the thread's value stack, the root set
// scanned by Roots (spec.md §3.4).
func (t *Thread) PushValue(v value.Value) {
	t.th.Stack = append(t.th.Stack, v)
}

func (t *Thread) PopValues(n int) {
	t.th.Stack = t.th.Stack[:len(t.th.Stack)-n]
}

// StackTop returns the value n slots below the top of the stack (0 is
// the top itself).
func (t *Thread) StackTop(n int) value.Value {
	return t.th.Stack[len(t.th.Stack)-1-n]
}

// EnterBlocking/ExitBlocking bracket a syscall the thread is about to
// perform (spec.md §5's allow-blocking/end-blocking).
func (t *Thread) EnterBlocking() { t.th.EnterBlocking() }
func (t *Thread) ExitBlocking()  { t.th.ExitBlocking() }

// SafePoint is the check a generated back-edge, call, or allocation site
// invokes; it blocks while the collector holds the world stopped.
func (t *Thread) SafePoint() { t.th.SafePoint() }

// RequestInterrupt/TakeInterrupt implement the keyboard-interrupt latch
// spec.md §5 describes: a handler calls RequestInterrupt from outside
// the mutator; the thread observes it at its next safe point via
// TakeInterrupt.
func (t *Thread) RequestInterrupt() { t.th.RequestInterrupt() }
func (t *Thread) TakeInterrupt() bool { return t.th.TakeInterrupt() }

// Pending returns the thread's pending-exception cell, the non-direct
// error-propagation path spec.md §7 requires alongside ordinary error
// returns: an operation that cannot report failure through its own
// return value (because ConstError already occupies that channel) stores
// the cause here instead, for the interpreter to notice at its next
// check point.
func (t *Thread) Pending() *rterror.Error { return t.th.Pending }

// SetPending records err as the thread's pending exception, clearing any
// previous one.
func (t *Thread) SetPending(err *rterror.Error) { t.th.Pending = err }

// ClearPending drops the thread's pending exception once the interpreter
// has handled it.
func (t *Thread) ClearPending() { t.th.Pending = nil }

// PushExceptionFrame/PopExceptionFrame maintain the thread's try/finally
// unwinding stack (spec.md §3.4).
func (t *Thread) PushExceptionFrame(kind string, depth int) {
	t.th.PushExceptionFrame(mutator.ExceptionFrame{Kind: kind, Depth: depth})
}

func (t *Thread) PopExceptionFrame() (kind string, depth int, ok bool) {
	f, ok := t.th.PopExceptionFrame()
	return f.Kind, f.Depth, ok
}

// internalHandle exposes the wrapped *mutator.Thread to the rest of this
// package (internal/strs and internal/gc both take one directly).
func (t *Thread) internalHandle() *mutator.Thread { return t.th }
