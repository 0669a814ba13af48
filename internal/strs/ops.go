// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// normIndex clamps a possibly-negative, possibly-out-of-range Python-style
// index against a length, per spec.md §4.8.2 ("negative indices count from
// the end; swapped or out-of-range indices yield an empty string").
func normIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// Slice implements slice(i, j) (spec.md §4.8.2).
func Slice(rt *gc.Runtime, th *mutator.Thread, v value.Value, i, j int) (value.Value, error) {
	n := Length(v)
	i = normIndex(i, n)
	j = normIndex(j, n)
	if j <= i {
		return emptyOf(v), nil
	}
	length := j - i
	if length >= SubstringThreshold {
		return NewSubstring(rt, th, v, i, length)
	}
	return copyRange(rt, th, v, i, length)
}

func emptyOf(v value.Value) value.Value {
	if isWide(v) {
		return emptyWide
	}
	return emptyNarrow
}

var emptyNarrow, emptyWide value.Value

// InitEmptyConstants allocates the shared empty-narrow/empty-wide string
// constants used as the result of degenerate slices and strips. Callers
// (the alorert facade) invoke this once at startup against a thread
// guaranteed to never be frozen mid-call.
func InitEmptyConstants(rt *gc.Runtime, th *mutator.Thread) error {
	v, _, err := NewNarrow(rt, th, 0)
	if err != nil {
		return err
	}
	emptyNarrow = v
	w, _, err := NewWide(rt, th, 0)
	if err != nil {
		return err
	}
	emptyWide = w
	return nil
}

func copyRange(rt *gc.Runtime, th *mutator.Thread, v value.Value, start, length int) (value.Value, error) {
	if isWide(v) {
		set := make([]uint16, length)
		for i := 0; i < length; i++ {
			set[i] = CharAt(v, start+i)
		}
		return FromBytes(rt, th, set)
	}
	out, w, err := NewNarrow(rt, th, length)
	if err != nil {
		return 0, err
	}
	for i := 0; i < length; i++ {
		w(i, byte(CharAt(v, start+i)))
	}
	return out, nil
}

// Concat implements concat(a, b): narrow if both operands are narrow (or a
// narrow substring), wide otherwise, widening the narrow operand lazily
// rather than mutating it (spec.md §4.8.1/§4.8.2).
func Concat(rt *gc.Runtime, th *mutator.Thread, a, b value.Value) (value.Value, error) {
	na, nb := Length(a), Length(b)
	wide := isWide(a) || isWide(b)
	if !wide {
		out, w, err := NewNarrow(rt, th, na+nb)
		if err != nil {
			return 0, err
		}
		for i := 0; i < na; i++ {
			w(i, byte(CharAt(a, i)))
		}
		for i := 0; i < nb; i++ {
			w(na+i, byte(CharAt(b, i)))
		}
		return out, nil
	}
	out, w, err := NewWide(rt, th, na+nb)
	if err != nil {
		return 0, err
	}
	for i := 0; i < na; i++ {
		w(i, CharAt(a, i))
	}
	for i := 0; i < nb; i++ {
		w(na+i, CharAt(b, i))
	}
	return out, nil
}

// Repeat implements repeat(s, n), preserving s's representation.
func Repeat(rt *gc.Runtime, th *mutator.Thread, v value.Value, n int) (value.Value, error) {
	if n <= 0 {
		return emptyOf(v), nil
	}
	sl := Length(v)
	total := sl * n
	if sl == 1 {
		// Single-character repeat: a plain fill, matching the original's
		// memset fast path.
		if isWide(v) {
			c := CharAt(v, 0)
			out, w, err := NewWide(rt, th, total)
			if err != nil {
				return 0, err
			}
			for i := 0; i < total; i++ {
				w(i, c)
			}
			return out, nil
		}
		c := byte(CharAt(v, 0))
		out, w, err := NewNarrow(rt, th, total)
		if err != nil {
			return 0, err
		}
		for i := 0; i < total; i++ {
			w(i, c)
		}
		return out, nil
	}
	if isWide(v) {
		out, w, err := NewWide(rt, th, total)
		if err != nil {
			return 0, err
		}
		for rep := 0; rep < n; rep++ {
			for i := 0; i < sl; i++ {
				w(rep*sl+i, CharAt(v, i))
			}
		}
		return out, nil
	}
	out, w, err := NewNarrow(rt, th, total)
	if err != nil {
		return 0, err
	}
	for rep := 0; rep < n; rep++ {
		for i := 0; i < sl; i++ {
			w(rep*sl+i, byte(CharAt(v, i)))
		}
	}
	return out, nil
}

// asciiWhitespace mirrors the original's whitespace table (space, tab,
// newline, CR, form feed, vertical tab).
func isASCIISpace(c uint16) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// Strip trims ASCII whitespace at both ends, returning a substring view
// (spec.md §4.8.2).
func Strip(rt *gc.Runtime, th *mutator.Thread, v value.Value) (value.Value, error) {
	n := Length(v)
	i := 0
	for i < n && isASCIISpace(CharAt(v, i)) {
		i++
	}
	j := n
	for j > i && isASCIISpace(CharAt(v, j-1)) {
		j--
	}
	if i == 0 && j == n {
		return v, nil
	}
	if j <= i {
		return emptyOf(v), nil
	}
	return NewSubstring(rt, th, v, i, j-i)
}

// matchAt reports whether sub occurs in s starting at index i.
func matchAt(s value.Value, i int, sub value.Value) bool {
	sn := Length(sub)
	if i+sn > Length(s) {
		return false
	}
	for k := 0; k < sn; k++ {
		if CharAt(s, i+k) != CharAt(sub, k) {
			return false
		}
	}
	return true
}

// Find implements find(s, sub, start): a naive scan returning -1 on miss
// (spec.md §4.8.2).
func Find(s value.Value, sub value.Value, start int) int {
	n, sn := Length(s), Length(sub)
	if start < 0 {
		start = 0
	}
	if sn == 0 {
		if start <= n {
			return start
		}
		return -1
	}
	for i := start; i+sn <= n; i++ {
		if matchAt(s, i, sub) {
			return i
		}
	}
	return -1
}

// Index implements index(s, sub): like Find, but the caller is expected to
// raise ValueError on a miss (spec.md §4.8.2); this function just reports
// found/not-found and leaves raising to the caller, since rterror needs a
// thread to attach to in the real interpreter.
func Index(s, sub value.Value) (int, bool) {
	i := Find(s, sub, 0)
	return i, i >= 0
}

// Count implements count(s, sub): counts non-overlapping occurrences.
func Count(s, sub value.Value) int {
	n, sn := Length(s), Length(sub)
	if sn == 0 {
		return n + 1
	}
	count := 0
	for i := 0; i+sn <= n; {
		if matchAt(s, i, sub) {
			count++
			i += sn
		} else {
			i++
		}
	}
	return count
}

// Replace implements replace(s, old, new[, max]): counts matches first,
// computes the exact result length, then rebuilds once (spec.md §4.8.2).
// max < 0 means unlimited.
func Replace(rt *gc.Runtime, th *mutator.Thread, s, old, new value.Value, max int) (value.Value, error) {
	n, on, nn := Length(s), Length(old), Length(new)
	if on == 0 {
		return s, nil
	}
	count := 0
	for i := 0; i+on <= n; {
		if max >= 0 && count >= max {
			break
		}
		if matchAt(s, i, old) {
			count++
			i += on
		} else {
			i++
		}
	}
	if count == 0 {
		return s, nil
	}
	resultLen := n + count*(nn-on)
	if resultLen < 0 {
		return 0, rterror.ErrLengthOverflow
	}
	units := make([]uint16, 0, resultLen)
	replaced := 0
	for i := 0; i < n; {
		if (max < 0 || replaced < max) && matchAt(s, i, old) {
			for k := 0; k < nn; k++ {
				units = append(units, CharAt(new, k))
			}
			i += on
			replaced++
			continue
		}
		units = append(units, CharAt(s, i))
		i++
	}
	return FromBytes(rt, th, units)
}

// StartsWith / EndsWith implement the matching spec.md §4.8.2 operations:
// direct scans, no allocation.
func StartsWith(s, prefix value.Value) bool {
	return matchAt(s, 0, prefix)
}

func EndsWith(s, suffix value.Value) bool {
	return matchAt(s, Length(s)-Length(suffix), suffix)
}

// Split implements split(s[, sep[, max]]) (spec.md §4.8.2). A nil sep
// splits on runs of ASCII whitespace with ends trimmed; an explicitly empty
// sep is a ValueError.
func Split(rt *gc.Runtime, th *mutator.Thread, s value.Value, sep value.Value, hasSep bool, max int) ([]value.Value, error) {
	if !hasSep {
		return splitWhitespace(rt, th, s, max)
	}
	if Length(sep) == 0 {
		return nil, errValue("empty separator")
	}
	var parts []value.Value
	n, sn := Length(s), Length(sep)
	start := 0
	for i := 0; i+sn <= n; {
		if max >= 0 && len(parts) >= max {
			break
		}
		if matchAt(s, i, sep) {
			v, err := copyOrView(rt, th, s, start, i-start)
			if err != nil {
				return nil, err
			}
			parts = append(parts, v)
			i += sn
			start = i
			continue
		}
		i++
	}
	tail, err := copyOrView(rt, th, s, start, n-start)
	if err != nil {
		return nil, err
	}
	return append(parts, tail), nil
}

func splitWhitespace(rt *gc.Runtime, th *mutator.Thread, s value.Value, max int) ([]value.Value, error) {
	var parts []value.Value
	n := Length(s)
	i := 0
	for i < n {
		for i < n && isASCIISpace(CharAt(s, i)) {
			i++
		}
		if i >= n {
			break
		}
		if max >= 0 && len(parts) >= max {
			// Trim a trailing run before returning the remainder, matching
			// the no-separator form's "trims ends" rule.
			j := n
			for j > i && isASCIISpace(CharAt(s, j-1)) {
				j--
			}
			v, err := copyOrView(rt, th, s, i, j-i)
			if err != nil {
				return nil, err
			}
			return append(parts, v), nil
		}
		start := i
		for i < n && !isASCIISpace(CharAt(s, i)) {
			i++
		}
		v, err := copyOrView(rt, th, s, start, i-start)
		if err != nil {
			return nil, err
		}
		parts = append(parts, v)
	}
	if parts == nil {
		v, err := copyOrView(rt, th, s, 0, 0)
		if err != nil {
			return nil, err
		}
		parts = append(parts, v)
	}
	return parts, nil
}

func copyOrView(rt *gc.Runtime, th *mutator.Thread, s value.Value, start, length int) (value.Value, error) {
	if length >= SubstringThreshold {
		return NewSubstring(rt, th, s, start, length)
	}
	return copyRange(rt, th, s, start, length)
}

// Join implements join(sep, parts): precomputes the total length, picks a
// wide or narrow result, then fills once (spec.md §4.8.2).
func Join(rt *gc.Runtime, th *mutator.Thread, sep value.Value, parts []value.Value) (value.Value, error) {
	if len(parts) == 0 {
		return emptyOf(sep), nil
	}
	total := 0
	for i, p := range parts {
		total += Length(p)
		if i > 0 {
			total += Length(sep)
		}
	}
	units := make([]uint16, 0, total)
	for i, p := range parts {
		if i > 0 {
			units = append(units, ToUnits(sep)...)
		}
		units = append(units, ToUnits(p)...)
	}
	return FromBytes(rt, th, units)
}
