// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strs implements the three-representation string subsystem
// (spec.md §4.8): narrow (byte) strings, wide (16-bit unit) strings, and
// substring views over either, sharing one set of abstract operations.
package strs

import (
	"unsafe"

	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/rterror"
	"golang.org/x/alorert/internal/value"
)

// repr identifies which of the three representations a string block uses.
// It is stored as the first body byte of narrow/wide blocks and implied by
// the block's Kind for substrings (spec.md §4.8.1's representation table).
type repr byte

const (
	reprNarrow repr = iota
	reprWide
)

// Narrow and wide blocks are KindNonPointer (raw bytes, nothing for the
// collector to trace): their first body byte is the repr discriminant,
// followed immediately by character data. Substrings are a KindValue block
// of exactly three slots so the collector already knows how to trace and
// relocate the one reference they hold, without a string-specific case in
// internal/gc/layout.go's scanFields.
const (
	reprHeaderBytes = 1

	subUnderlyingSlot = 0 // Value: the underlying narrow/wide string
	subStartSlot      = 1 // ShortInt: start index into the underlying string
	subLenSlot        = 2 // ShortInt: view length
	subSlots          = 3
)

// SubstringThreshold is the minimum view length, in code units, at which
// slice/strip/etc. build a substring view instead of copying (spec.md
// §4.8.1: "a threshold proportional to two machine words").
var SubstringThreshold = 2 * int(unsafe.Sizeof(value.Value(0)))

func readByte(addr uintptr) byte        { return *(*byte)(unsafe.Pointer(addr)) }
func writeByteAt(addr uintptr, b byte)  { *(*byte)(unsafe.Pointer(addr)) = b }
func readUint16(addr uintptr) uint16    { return *(*uint16)(unsafe.Pointer(addr)) }
func writeUint16At(addr uintptr, v uint16) { *(*uint16)(unsafe.Pointer(addr)) = v }
func readHeader(addr uintptr) value.Header { return *(*value.Header)(unsafe.Pointer(addr)) }
func readWord(addr uintptr) value.Value    { return *(*value.Value)(unsafe.Pointer(addr)) }
func writeWordAt(addr uintptr, v value.Value) {
	*(*value.Value)(unsafe.Pointer(addr)) = v
}

func bodyOf(addr uintptr) uintptr {
	return addr + unsafe.Sizeof(value.Header(0))
}

// reprOf reports the physical representation a live string Value uses,
// resolving through a substring's underlying pointer.
func reprOf(v value.Value) repr {
	for {
		h := readHeader(value.RefAddr(v))
		if h.KindOf() == value.KindValue {
			v = readWord(bodyOf(value.RefAddr(v)) + subUnderlyingSlot*wordSize())
			continue
		}
		return repr(readByte(bodyOf(value.RefAddr(v))))
	}
}

func wordSize() uintptr { return unsafe.Sizeof(value.Value(0)) }

// isSubstring reports whether v is a substring-view block.
func isSubstring(v value.Value) bool {
	return readHeader(value.RefAddr(v)).KindOf() == value.KindValue
}

// resolve follows a (possibly chained, though builders never chain them)
// substring down to its underlying narrow/wide string plus the absolute
// [start, start+length) window within it.
func resolve(v value.Value) (under value.Value, start, length int) {
	if !isSubstring(v) {
		return v, 0, dataLength(v)
	}
	body := bodyOf(value.RefAddr(v))
	ws := wordSize()
	u := readWord(body + subUnderlyingSlot*ws)
	st := value.ShortInt(readWord(body + subStartSlot*ws))
	ln := value.ShortInt(readWord(body + subLenSlot*ws))
	return u, st, ln
}

// dataLength returns the element count of a narrow/wide physical block
// (excluding the repr discriminant byte), from its header size.
func dataLength(v value.Value) int {
	h := readHeader(value.RefAddr(v))
	size := int(h.Size()) - reprHeaderBytes
	if repr(readByte(bodyOf(value.RefAddr(v)))) == reprWide {
		return size / 2
	}
	return size
}

// Length returns a string's length in code units (spec.md §4.8.2).
func Length(v value.Value) int {
	if isSubstring(v) {
		_, _, length := resolve(v)
		return length
	}
	return dataLength(v)
}

// CharAt returns the code unit at index i (spec.md §4.8.2). Callers must
// range-check; alore-level bounds errors are raised by the interpreter, not
// this package (mirrors spec.md §7's split between core and caller).
func CharAt(v value.Value, i int) uint16 {
	under, start, _ := resolve(v)
	return rawCharAt(under, start+i)
}

func rawCharAt(v value.Value, i int) uint16 {
	body := bodyOf(value.RefAddr(v)) + reprHeaderBytes
	if repr(readByte(bodyOf(value.RefAddr(v)))) == reprWide {
		return readUint16(body + uintptr(i)*2)
	}
	return uint16(readByte(body + uintptr(i)))
}

func isWide(v value.Value) bool {
	under, _, _ := resolve(v)
	return repr(readByte(bodyOf(value.RefAddr(under)))) == reprWide
}

// NewNarrow allocates a fresh, writable narrow string of length n. The
// returned buf callback writes byte i; the string must not be published to
// user-visible slots until every byte has been written (spec.md §4.8.1's
// "newly allocated uninitialized strings are writable through a restricted
// internal API").
func NewNarrow(rt *gc.Runtime, th *mutator.Thread, n int) (value.Value, func(i int, b byte), error) {
	v, err := rt.AllocNursery(th, uintptr(n+reprHeaderBytes), value.KindNonPointer)
	if err != nil {
		return 0, nil, err
	}
	body := bodyOf(value.RefAddr(v))
	writeByteAt(body, byte(reprNarrow))
	data := body + reprHeaderBytes
	return v, func(i int, b byte) { writeByteAt(data+uintptr(i), b) }, nil
}

// NewWide allocates a fresh, writable wide string of length n, analogous to
// NewNarrow.
func NewWide(rt *gc.Runtime, th *mutator.Thread, n int) (value.Value, func(i int, c uint16), error) {
	v, err := rt.AllocNursery(th, uintptr(n*2+reprHeaderBytes), value.KindNonPointer)
	if err != nil {
		return 0, nil, err
	}
	body := bodyOf(value.RefAddr(v))
	writeByteAt(body, byte(reprWide))
	data := body + reprHeaderBytes
	return v, func(i int, c uint16) { writeUint16At(data+uintptr(i)*2, c) }, nil
}

// NewSubstring allocates a substring view of under[start:start+length].
// Callers choosing between a view and a copy apply SubstringThreshold
// themselves (Slice does this); NewSubstring itself performs no threshold
// check so other callers (e.g. Strip) can always request a view.
func NewSubstring(rt *gc.Runtime, th *mutator.Thread, under value.Value, start, length int) (value.Value, error) {
	realUnder, realStart, _ := resolve(under)
	v, err := rt.AllocNursery(th, subSlots*wordSize(), value.KindValue)
	if err != nil {
		return 0, err
	}
	body := bodyOf(value.RefAddr(v))
	ws := wordSize()
	writeWordAt(body+subUnderlyingSlot*ws, realUnder)
	writeWordAt(body+subStartSlot*ws, value.MakeShortInt(realStart+start))
	writeWordAt(body+subLenSlot*ws, value.MakeShortInt(length))
	return v, nil
}

// FromBytes copies a slice of 16-bit code units into a fresh narrow or wide
// alore string, widening automatically if any unit exceeds a byte (used by format.go and
// codec decoders building a result from decoded runes).
func FromBytes(rt *gc.Runtime, th *mutator.Thread, units []uint16) (value.Value, error) {
	wide := false
	for _, u := range units {
		if u > 0xff {
			wide = true
			break
		}
	}
	if wide {
		v, set, err := NewWide(rt, th, len(units))
		if err != nil {
			return 0, err
		}
		for i, u := range units {
			set(i, u)
		}
		return v, nil
	}
	v, set, err := NewNarrow(rt, th, len(units))
	if err != nil {
		return 0, err
	}
	for i, u := range units {
		set(i, byte(u))
	}
	return v, nil
}

// ToUnits materializes a string's code units as a Go slice, for operations
// whose cheapest implementation is easier written against a plain slice
// (format, codecs) than against the tagged representations directly.
func ToUnits(v value.Value) []uint16 {
	n := Length(v)
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = CharAt(v, i)
	}
	return out
}

func errValue(format string, args ...interface{}) error {
	return rterror.New(rterror.ValueErr, format, args...)
}
