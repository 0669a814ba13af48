// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"strconv"

	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// Named covers the §4.8.5 "function/type/constant" case: anything whose
// str() conversion is just its fully qualified symbol name.
type Named interface {
	QualifiedName() string
}

// BigInt covers the arbitrary-precision integer case; the core itself has
// no bignum representation, so this is a hook the facade fills in once it
// wires a bignum library, rather than a dependency of this package.
type BigInt interface {
	Decimal() string
}

// Convertible is everything Str needs to know about a non-primitive
// argument to implement §4.8.5 without this package depending on the
// instance/type model those concerns belong to.
type Convertible struct {
	ShortInt *int
	Float    *float64
	Str      value.Value
	HasStr   bool
	Instance ToStringer
	TypeName string // non-empty if the instance has no _str
	Named    Named
	BigInt   BigInt
}

// Str implements the generic `str(x)` conversion (spec.md §4.8.5).
func Str(rt *gc.Runtime, th *mutator.Thread, x Convertible) (value.Value, error) {
	switch {
	case x.HasStr:
		return x.Str, nil
	case x.ShortInt != nil:
		return fromASCII(rt, th, strconv.Itoa(*x.ShortInt))
	case x.Float != nil:
		return formatFloatValue(rt, th, *x.Float)
	case x.BigInt != nil:
		return fromASCII(rt, th, x.BigInt.Decimal())
	case x.Named != nil:
		return fromASCII(rt, th, x.Named.QualifiedName())
	case x.Instance != nil:
		v, err := x.Instance.ToString()
		if err != nil {
			return 0, err
		}
		if !isStringValue(v) {
			return 0, rterror.New(rterror.TypeErr, "_str must return a Str")
		}
		return v, nil
	case x.TypeName != "":
		return fromASCII(rt, th, "<"+x.TypeName+" instance>")
	default:
		return 0, rterror.New(rterror.TypeErr, "value has no string conversion")
	}
}

func formatFloatValue(rt *gc.Runtime, th *mutator.Thread, f float64) (value.Value, error) {
	if s, ok := formatNonFinite(f); ok {
		return fromASCII(rt, th, s)
	}
	return fromASCII(rt, th, strconv.FormatFloat(f, 'g', 10, 64))
}

func fromASCII(rt *gc.Runtime, th *mutator.Thread, s string) (value.Value, error) {
	units := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		units[i] = uint16(s[i])
	}
	return FromBytes(rt, th, units)
}

// isStringValue reports whether v is one of the physical string
// representations this package builds (as opposed to, say, an
// interpreter-level instance).
func isStringValue(v value.Value) bool {
	if !value.IsRef(v) {
		return false
	}
	h := readHeader(value.RefAddr(v))
	switch h.KindOf() {
	case value.KindNonPointer:
		return true
	case value.KindValue:
		return h.Size() == subSlots*wordSize()
	default:
		return false
	}
}
