// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/value"
)

// Finalizer pairs a finalized object with the routine to call once the
// collector finds it unreachable (spec.md §4.7).
type Finalizer = gc.Finalizer

// RegisterFinalizer records fn as instance's finalizer (spec.md §6's
// register-finalizer(instance)). instance must already be a live
// reference; its current generation is derived from its address so the
// registration lands in the right half of the split young/old table
// (internal/gc.Finalizers).
func (r *Runtime) RegisterFinalizer(instance, fn Value) {
	addr := value.RefAddr(instance)
	r.gc.Finalizers().Register(addr, instance, fn, r.gc.Nursery().Contains(addr))
}

// PendingFinalizers drains and returns every finalizer whose object the
// collector has found dead since the last call (spec.md §6's "collector
// dispatch of pending finalizers"). The caller — the interpreter, which
// owns the notion of "calling a value" — is responsible for actually
// invoking each one.
func (r *Runtime) PendingFinalizers() []Finalizer {
	return r.gc.Finalizers().TakePending()
}
