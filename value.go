// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"golang.org/x/alorert/internal/strs"
	"golang.org/x/alorert/internal/value"
)

// Value is the tagged machine word every core operation passes around
// (spec.md §3.1, §4.1).
type Value = value.Value

// Kind identifies a heap block's physical layout (spec.md §3.2).
type Kind = value.Kind

const (
	KindNonPointer = value.KindNonPointer
	KindValue      = value.KindValue
	KindInstance   = value.KindInstance
	KindMixed      = value.KindMixed
)

// Constants re-exported from internal/value (spec.md §3.1).
const (
	Nil         = value.ConstNil
	True        = value.ConstTrue
	False       = value.ConstFalse
	ErrorValue  = value.ConstError
	DefaultArg  = value.ConstDefaultArg
)

// MinShortInt/MaxShortInt bound the representable short-integer range.
const (
	MinShortInt = value.MinShortInt
	MaxShortInt = value.MaxShortInt
)

// Value-API predicates (spec.md §6): is-short-int, is-str, is-narrow-str,
// is-wide-str, is-sub-str, is-instance, is-mixed-value, is-float,
// is-constant.
func IsShortInt(v Value) bool { return value.IsShortInt(v) }
func IsFloat(v Value) bool    { return value.IsFloat(v) }
func IsConstant(v Value) bool { return value.IsConstant(v) }
func IsNilValue(v Value) bool { return value.IsNil(v) }
func IsErrorValue(v Value) bool { return value.IsError(v) }
func IsStr(v Value) bool        { return strs.IsStr(v) }
func IsNarrowStr(v Value) bool  { return strs.IsNarrowStr(v) }
func IsWideStr(v Value) bool    { return strs.IsWideStr(v) }
func IsSubStr(v Value) bool     { return strs.IsSubStr(v) }

// IsInstance/IsMixedValue report a reference's block kind (spec.md §6's
// is-instance, is-mixed-value). Both assume IsRef(v), which the caller is
// expected to have already checked, matching the original's layering.
func (r *Runtime) IsInstance(v Value) bool {
	return r.gc.KindOf(v) == value.KindInstance
}

func (r *Runtime) IsMixedValue(v Value) bool {
	return r.gc.KindOf(v) == value.KindMixed
}

// ToInt decodes a short-integer Value (spec.md §6's to-int). The caller
// must have already checked IsShortInt.
func ToInt(v Value) int { return value.ShortInt(v) }

// MakeInt encodes i as a short-integer Value. The caller must ensure i is
// within [MinShortInt, MaxShortInt].
func MakeInt(i int) Value { return value.MakeShortInt(i) }

// MakeBool converts a native bool to the matching constant Value.
func MakeBool(b bool) Value { return value.BoolValue(b) }

// IsTrue reports whether v is the true constant.
func IsTrue(v Value) bool { return value.IsTrue(v) }

// AddInt/SubInt perform checked short-integer arithmetic, reporting
// overflow so the caller can fall back to a heap bignum (spec.md §4.1).
func AddInt(a, b Value) (sum Value, overflow bool) { return value.AddShortInt(a, b) }
func SubInt(a, b Value) (diff Value, overflow bool) { return value.SubShortInt(a, b) }

// HashValue computes v's generic hash (spec.md §6's hash-value),
// dispatching by kind: short ints and constants hash their own bits,
// strings hash their content (internal/strs.Hash), float boxes hash by
// identity (internal/gc.IdentityHash, wired at Runtime construction).
func HashValue(v Value) uint32 { return value.HashValue(v) }

// SmallInt looks up i in the runtime's small-integer cache (SPEC_FULL.md
// §3's keyint.c-derived supplement), returning (0, false) if the cache is
// disabled or i falls outside its configured range.
func (r *Runtime) SmallInt(i int) (Value, bool) {
	if r.smallInt == nil {
		return 0, false
	}
	return r.smallInt.Lookup(i)
}
