// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"unicode"

	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/value"
)

// Upper and Lower implement the spec.md §4.8.2 case conversions: every code
// unit, ASCII or not, is mapped through the standard library's
// unicode.ToUpper/unicode.ToLower tables (DESIGN.md records why no pack dependency
// covers Unicode case folding).
func Upper(rt *gc.Runtime, th *mutator.Thread, s value.Value) (value.Value, error) {
	return mapCase(rt, th, s, unicode.ToUpper)
}

func Lower(rt *gc.Runtime, th *mutator.Thread, s value.Value) (value.Value, error) {
	return mapCase(rt, th, s, unicode.ToLower)
}

func mapCase(rt *gc.Runtime, th *mutator.Thread, s value.Value, fn func(rune) rune) (value.Value, error) {
	n := Length(s)
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		c := CharAt(s, i)
		units[i] = uint16(fn(rune(c)))
	}
	return FromBytes(rt, th, units)
}
