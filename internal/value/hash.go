// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

// StrHash is filled in by internal/strs at its package init, and
// RefIdentityHash by the alorert facade when it builds a Runtime
// (wireIdentityHash, wrapping internal/gc's identity hash), so HashValue can
// dispatch to the string-specific hash (spec.md §4.8.3) and the identity
// hash of a boxed float (spec.md §4.6) without this package importing
// either — both sit above value in the dependency order already.
var (
	StrHash         func(Value) uint32
	RefIdentityHash func(Value) uint32
)

// HashValue is the generic hash dispatcher the original calls
// AHashValue: every hash-table-backed collection outside the core hashes
// through here rather than special-casing Value kinds itself (spec.md
// §4.8.3's note that AStrHashValue is one case of a more general
// dispatch).
func HashValue(v Value) uint32 {
	switch {
	case IsShortInt(v):
		return uint32(ShortInt(v))
	case IsConstant(v):
		return uint32(v)
	case IsFloat(v):
		if RefIdentityHash != nil {
			return RefIdentityHash(v)
		}
		return uint32(v)
	case IsRef(v):
		if StrHash != nil {
			return StrHash(v)
		}
		return uint32(v)
	default:
		return uint32(v)
	}
}
