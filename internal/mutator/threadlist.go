// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mutator

import (
	"sync"

	"golang.org/x/alorert/internal/value"
)

// List is the registry of live mutator threads plus the stop-the-world
// coordination the collector uses to get a consistent root set (spec.md
// §5). Threads that are inside a blocking bracket are treated as already
// stopped: the collector does not wait for them, since they are not
// touching the heap.
type List struct {
	mu      sync.Mutex
	threads map[int]*Thread
	nextID  int
}

// NewList creates an empty thread registry.
func NewList() *List {
	return &List{threads: make(map[int]*Thread)}
}

// Register adds a new thread with the given stack/temp capacities and
// returns it.
func (l *List) Register(stackCap, tempCap int) *Thread {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	t := New(id, stackCap, tempCap)
	l.threads[id] = t
	return t
}

// Unregister removes a thread, e.g. when it exits.
func (l *List) Unregister(t *Thread) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.threads, t.ID)
}

// Each calls fn for every currently registered thread. The caller must
// already hold whatever lock makes this safe (typically during a
// stop-the-world pause, or while holding l.mu via Freeze).
func (l *List) Each(fn func(*Thread)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.threads {
		fn(t)
	}
}

// StopTheWorld freezes every non-blocking thread and returns a resume
// function. Threads that were inside a blocking bracket are left alone —
// they are required to call Thread.SafePoint on ExitBlocking, which
// observes the freeze only if it is still in effect.
//
// This models spec.md §5's requirement that the collector gets a
// consistent root set without waiting on threads already known not to
// touch the heap.
func (l *List) StopTheWorld() (resume func()) {
	l.mu.Lock()
	frozen := make([]*Thread, 0, len(l.threads))
	for _, t := range l.threads {
		if t.isBlocking() {
			continue
		}
		t.freeze()
		frozen = append(frozen, t)
	}
	l.mu.Unlock()

	return func() {
		for _, t := range frozen {
			t.thaw()
		}
	}
}

// RootsAll calls fn for every root slot (see Thread.Roots) across every registered
// thread. Must be called only while the world is stopped.
func (l *List) RootsAll(fn func(*value.Value)) {
	l.Each(func(t *Thread) { t.Roots(fn) })
}
