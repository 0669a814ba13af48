// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/value"
)

// wireIdentityHash binds internal/value.RefIdentityHash to rt's identity
// hash tables, the one piece of SPEC_FULL.md's generic hash dispatch
// (HashValue) that internal/value cannot resolve on its own: hashing a
// float box's identity requires knowing which generation currently holds
// it, which only a live *gc.Runtime can answer. internal/strs wires
// value.StrHash itself at init time (internal/strs/compare.go); this is
// the other half of the pair declared in internal/value/hash.go.
//
// Only the most recently constructed Runtime's hash tables are
// reachable through value.HashValue at any moment — a process embedding
// more than one Runtime concurrently would need a different dispatch
// scheme, but the core models a single mutator heap per process (spec.md
// §3.3), so this is not a real restriction in practice.
func wireIdentityHash(rt *gc.Runtime) {
	nur := rt.Nursery()
	idhash := rt.IdentityHash()
	value.RefIdentityHash = func(v value.Value) uint32 {
		addr := value.FloatAddr(v)
		return idhash.HashOf(addr, nur.Contains(addr))
	}
}
