// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import (
	"golang.org/x/alorert/internal/strs"
)

// CreateString allocates a narrow (8-bit) string of len(buf) bytes
// (spec.md §6's create-string(thread, buf, len)).
func (r *Runtime) CreateString(th *Thread, buf []byte) (Value, error) {
	v, write, err := strs.NewNarrow(r.gc, th.internalHandle(), len(buf))
	if err != nil {
		return 0, err
	}
	for i, b := range buf {
		write(i, b)
	}
	return v, nil
}

// CreateWideString allocates a wide (16-bit) string (spec.md §6's
// create-wide-string).
func (r *Runtime) CreateWideString(th *Thread, units []uint16) (Value, error) {
	v, write, err := strs.NewWide(r.gc, th.internalHandle(), len(units))
	if err != nil {
		return 0, err
	}
	for i, c := range units {
		write(i, c)
	}
	return v, nil
}

// CreateSubStr builds a substring view over under[start:start+length]
// (spec.md §6's create-sub-str). It always builds a view; unlike Slice, it
// applies no substring-vs-copy threshold.
func (r *Runtime) CreateSubStr(th *Thread, under Value, start, length int) (Value, error) {
	return strs.NewSubstring(r.gc, th.internalHandle(), under, start, length)
}

// MakeCh builds a one-character string from a single code unit (spec.md
// §6's make-ch), widening automatically if c does not fit in a byte.
func (r *Runtime) MakeCh(th *Thread, c uint16) (Value, error) {
	return strs.FromBytes(r.gc, th.internalHandle(), []uint16{c})
}

// GetCStr extracts a string's content as narrow bytes, truncated to at
// most maxLen units (spec.md §6's get-c-str). Wide code units above 0xff
// are truncated to their low byte, matching the original's narrow
// C-string extraction contract for ASCII-range content; callers passing
// a string known to contain wide characters should use GetUTF8 instead.
func (r *Runtime) GetCStr(s Value, maxLen int) []byte {
	units := strs.ToUnits(s)
	if maxLen >= 0 && len(units) > maxLen {
		units = units[:maxLen]
	}
	out := make([]byte, len(units))
	for i, u := range units {
		out[i] = byte(u)
	}
	return out
}

// GetUTF8 extracts a string's content UTF-8 encoded as a plain Go byte
// slice (spec.md §6's get-utf8), using the lax encoding policy (invalid
// code points become U+FFFD rather than failing).
func (r *Runtime) GetUTF8(s Value) ([]byte, error) {
	return r.utf8Codec().Encode(strs.ToUnits(s), false)
}

// ConcatStrings concatenates two strings (spec.md §6's concat-strings).
func (r *Runtime) ConcatStrings(th *Thread, a, b Value) (Value, error) {
	return strs.Concat(r.gc, th.internalHandle(), a, b)
}

// CompareStrings returns a negative, zero, or positive int comparing a
// and b lexicographically by code unit (spec.md §6's compare-strings).
func (r *Runtime) CompareStrings(a, b Value) int {
	return strs.Compare(a, b)
}

// StrLength, StrCharAt mirror spec.md §4.8.2's core string accessors.
func (r *Runtime) StrLength(s Value) int          { return strs.Length(s) }
func (r *Runtime) StrCharAt(s Value, i int) uint16 { return strs.CharAt(s, i) }

// Slice returns the substring s[i:j], viewing rather than copying when
// the result is long enough to cross strs.SubstringThreshold.
func (r *Runtime) Slice(th *Thread, s Value, i, j int) (Value, error) {
	return strs.Slice(r.gc, th.internalHandle(), s, i, j)
}

// Repeat, Strip, Find, Index, Count, Replace, StartsWith, EndsWith,
// Split, Join, Upper, Lower forward directly to internal/strs, rounding
// out the string operations spec.md §4.8.2 groups alongside Slice.
func (r *Runtime) Repeat(th *Thread, s Value, n int) (Value, error) {
	return strs.Repeat(r.gc, th.internalHandle(), s, n)
}

func (r *Runtime) Strip(th *Thread, s Value) (Value, error) {
	return strs.Strip(r.gc, th.internalHandle(), s)
}

func (r *Runtime) Find(s, sub Value, start int) int { return strs.Find(s, sub, start) }
func (r *Runtime) Index(s, sub Value) (int, bool)   { return strs.Index(s, sub) }
func (r *Runtime) Count(s, sub Value) int           { return strs.Count(s, sub) }

func (r *Runtime) Replace(th *Thread, s, old, new Value, max int) (Value, error) {
	return strs.Replace(r.gc, th.internalHandle(), s, old, new, max)
}

func (r *Runtime) StartsWith(s, prefix Value) bool { return strs.StartsWith(s, prefix) }
func (r *Runtime) EndsWith(s, suffix Value) bool   { return strs.EndsWith(s, suffix) }

func (r *Runtime) Split(th *Thread, s, sep Value, hasSep bool, max int) ([]Value, error) {
	return strs.Split(r.gc, th.internalHandle(), s, sep, hasSep, max)
}

func (r *Runtime) Join(th *Thread, sep Value, parts []Value) (Value, error) {
	return strs.Join(r.gc, th.internalHandle(), sep, parts)
}

func (r *Runtime) Upper(th *Thread, s Value) (Value, error) { return strs.Upper(r.gc, th.internalHandle(), s) }
func (r *Runtime) Lower(th *Thread, s Value) (Value, error) { return strs.Lower(r.gc, th.internalHandle(), s) }

// Format implements the `{A:SPEC}` mini-language (spec.md §4.8.4).
func (r *Runtime) Format(th *Thread, fmtStr Value, args []strs.FormatArg) (Value, error) {
	return strs.Format(r.gc, th.internalHandle(), fmtStr, args)
}

// FormatArg re-exports internal/strs's type-erased format argument.
type FormatArg = strs.FormatArg

// Str implements the generic str(x) conversion (spec.md §4.8.5).
func (r *Runtime) Str(th *Thread, x strs.Convertible) (Value, error) {
	return strs.Str(r.gc, th.internalHandle(), x)
}

// Convertible re-exports internal/strs's generic-conversion argument.
type Convertible = strs.Convertible

// Codec re-exports the encode/decode codec contract (spec.md §4.8.2,
// SPEC_FULL.md §3's encodings-module supplement).
type Codec = strs.Codec

// Codecs is the runtime's registry of built-in codecs (ascii, utf8),
// looked up by name for Encode/Decode.
func (r *Runtime) Codecs() *strs.Registry { return r.codecs() }

func (r *Runtime) codecs() *strs.Registry {
	if r.codecRegistry == nil {
		r.codecRegistry = strs.NewRegistry()
	}
	return r.codecRegistry
}

func (r *Runtime) utf8Codec() Codec {
	c, _ := r.codecs().Lookup("utf8")
	return c
}

// Encode/Decode apply a named codec's strict or lax policy to a string
// (spec.md §4.8.2).
func (r *Runtime) Encode(th *Thread, s Value, c Codec, strict bool) (Value, error) {
	return strs.Encode(r.gc, th.internalHandle(), s, c, strict)
}

func (r *Runtime) Decode(th *Thread, s Value, c Codec, strict bool) (Value, error) {
	return strs.Decode(r.gc, th.internalHandle(), s, c, strict)
}
