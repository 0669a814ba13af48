// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mutator implements the per-thread structures the core requires
// of a thread subsystem it does not itself implement (spec.md §3.4, §4.9):
// value stacks, temporary slot arrays, the nursery slab pointer pair,
// write-barrier output lists, and the safe-point/freeze protocol the
// garbage collector uses to stop the world.
package mutator

import (
	"sync/atomic"

	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// stackBottom (the zero Value) marks where scanning should stop, matching
// the original's A_STACK_BOTTOM being a NULL word.
const stackBottom = value.Value(0)

// NewGenRef is one entry of a thread's new-generation-reference list (the
// remembered set): a store of a young reference into an old object,
// recorded by the second write barrier (spec.md §4.5.4).
type NewGenRef struct {
	Slot  uintptr // address of the old object's slot that was written
	Value value.Value
}

// ExceptionFrame is one entry of a thread's try/finally unwinding stack
// (spec.md §3.4). The core only needs to know frames exist so it can
// report a consistent pending-exception state across unwinds; the
// interpreter outside the core owns their actual semantics.
type ExceptionFrame struct {
	Kind  string
	Depth int
}

// Thread is one mutator thread's core-visible state. Only the owning
// thread may write these fields; other threads (the collector) only read
// them, and only during a stop-the-world pause (spec.md §5).
type Thread struct {
	ID int

	// Stack is the value stack, bottom (index 0) to current frame
	// (top). A stackBottom entry marks where root scanning should stop;
	// see Roots().
	Stack []value.Value

	// Temps is the temporary slot array used to keep values alive across
	// operations that may allocate (spec.md §3.4).
	Temps []value.Value

	// HeapPtr/HeapEnd delimit this thread's private nursery slab
	// (spec.md §4.4). Updated without a lock by the owning thread; read
	// by the collector only while frozen.
	HeapPtr, HeapEnd uintptr

	// NewGenRefs is the remembered set: old->young pointer stores
	// (spec.md §4.5.4 second barrier).
	NewGenRefs []NewGenRef

	// Untraced is the gray-object queue produced by the mark-phase write
	// barrier (spec.md §4.5.4 first barrier).
	Untraced []value.Value

	// RegexCache holds cached compiled-regex Values scanned as roots
	// (spec.md §4.5.1).
	RegexCache []value.Value

	exceptionStack []ExceptionFrame

	// Pending is the thread-local pending-exception cell for the
	// non-direct error propagation path (spec.md §7).
	Pending *rterror.Error

	// blocking is set while the thread is inside an "allow-blocking"
	// bracket (spec.md §5); a blocking thread is considered outside the
	// heap and may be asynchronously frozen without waiting for it to
	// reach an ordinary safe point.
	blocking int32

	// interruptPending latches a delivered keyboard interrupt until the
	// thread passes a safe point outside a blocking bracket.
	interruptPending int32

	// frozen is flipped by the collector during a stop-the-world pause;
	// SafePoint blocks while it is set.
	frozen int32
	resume chan struct{}
}

// New creates a Thread with the given initial stack/temp capacities.
func New(id int, stackCap, tempCap int) *Thread {
	return &Thread{
		ID:     id,
		Stack:  make([]value.Value, 1, stackCap+1), // index 0 = stackBottom sentinel
		Temps:  make([]value.Value, 0, tempCap),
		resume: make(chan struct{}),
	}
}

// PushTemp pushes v onto the temporary slot array, returning its index
// (spec.md §6 alloc-temp).
func (t *Thread) PushTemp(v value.Value) int {
	t.Temps = append(t.Temps, v)
	return len(t.Temps) - 1
}

// PopTemp discards the top n temporary slots (spec.md §6 free-temp).
func (t *Thread) PopTemp(n int) {
	t.Temps = t.Temps[:len(t.Temps)-n]
}

// PushExceptionFrame/PopExceptionFrame maintain the try/finally unwinding
// stack.
func (t *Thread) PushExceptionFrame(f ExceptionFrame) {
	t.exceptionStack = append(t.exceptionStack, f)
}

func (t *Thread) PopExceptionFrame() (ExceptionFrame, bool) {
	if len(t.exceptionStack) == 0 {
		return ExceptionFrame{}, false
	}
	n := len(t.exceptionStack) - 1
	f := t.exceptionStack[n]
	t.exceptionStack = t.exceptionStack[:n]
	return f, true
}

// EnterBlocking/ExitBlocking bracket a syscall the thread is about to
// perform (spec.md §5's "allow-blocking"/"end-blocking"), grounded on the
// original runtime's AAllowBlocking/AEndBlocking macros
// (original_source/src/athread.h). While inside the bracket the thread is
// eligible to be frozen asynchronously instead of waiting at a safe point.
func (t *Thread) EnterBlocking() {
	atomic.StoreInt32(&t.blocking, 1)
}

func (t *Thread) ExitBlocking() {
	atomic.StoreInt32(&t.blocking, 0)
	t.SafePoint()
}

func (t *Thread) isBlocking() bool {
	return atomic.LoadInt32(&t.blocking) != 0
}

// RequestInterrupt latches a pending keyboard interrupt for this thread.
func (t *Thread) RequestInterrupt() {
	atomic.StoreInt32(&t.interruptPending, 1)
}

// TakeInterrupt consumes and reports a pending interrupt, delivering the
// error sentinel the way spec.md §7 describes for blocking primitives
// that wake on EINTR-style conditions.
func (t *Thread) TakeInterrupt() bool {
	return atomic.CompareAndSwapInt32(&t.interruptPending, 1, 0)
}

// SafePoint is the check inserted on every back-edge, call, and
// allocation (spec.md §5). If the collector has requested a freeze, the
// calling goroutine blocks here until resumed.
func (t *Thread) SafePoint() {
	if atomic.LoadInt32(&t.frozen) == 0 {
		return
	}
	<-t.resume
}

// freeze marks the thread as frozen; used only by the collector's
// stop-the-world phase (see List.StopTheWorld).
func (t *Thread) freeze() {
	atomic.StoreInt32(&t.frozen, 1)
}

// thaw releases a frozen thread.
func (t *Thread) thaw() {
	if atomic.CompareAndSwapInt32(&t.frozen, 1, 0) {
		close(t.resume)
		t.resume = make(chan struct{})
	}
}

// Roots iterates the thread's stack from bottom to current frame,
// stopping at the first stackBottom sentinel above index 0, then its
// temporaries, remembered-set values and regex cache, and calls fn with a
// pointer to every slot it visits, reference or not; callers skip
// non-reference Values themselves (spec.md §4.5.1).
func (t *Thread) Roots(fn func(*value.Value)) {
	for i := range t.Stack {
		if t.Stack[i] == stackBottom && i != 0 {
			break
		}
		fn(&t.Stack[i])
	}
	for i := range t.Temps {
		fn(&t.Temps[i])
	}
	for i := range t.NewGenRefs {
		fn(&t.NewGenRefs[i].Value)
	}
	for i := range t.RegexCache {
		fn(&t.RegexCache[i])
	}
}
