// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "golang.org/x/alorert/internal/value"

func init() {
	value.StrHash = Hash
}

// Compare implements lexicographic comparison on 16-bit code units across
// any combination of narrow, wide and substring representations (spec.md
// §4.8.3). It reads both operands through CharAt, so no representation
// ever needs widening just to compare.
func Compare(a, b value.Value) int {
	na, nb := Length(a), Length(b)
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		ca, cb := CharAt(a, i), CharAt(b, i)
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b hold the same sequence of code units,
// regardless of representation.
func Equal(a, b value.Value) bool {
	return Compare(a, b) == 0
}

// Hash computes h = h*32 + c folded over code units, seeded with 0, so
// equal strings hash equally regardless of representation (spec.md
// §4.8.3/§8.8).
func Hash(s value.Value) uint32 {
	var h uint32
	n := Length(s)
	for i := 0; i < n; i++ {
		h = h*32 + uint32(CharAt(s, i))
	}
	return h
}
