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

// Codec implements one encode/decode pair for encode(enc)/decode(enc)
// (spec.md §4.8.2, "Encodings module contract" in SPEC_FULL.md). Encode
// takes code units and produces raw bytes; Decode takes raw bytes and
// produces code units plus the count of trailing bytes that did not form
// a complete character (the "unprocessed" remainder §4.8.2 describes).
type Codec interface {
	Name() string
	Encode(units []uint16, strict bool) (out []byte, err error)
	Decode(in []byte, strict bool) (units []uint16, unprocessed int, err error)
}

// replacementChar is U+FFFD, substituted for invalid input in lax mode.
const replacementChar = 0xfffd

// Registry maps codec names (as passed to encode/decode) to
// implementations, so the facade can add more without this package
// growing a case arm per encoding.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry builds a registry preloaded with the codecs this package
// implements directly (ascii, utf8); callers Register more as needed.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	r.Register(asciiCodec{})
	r.Register(utf8Codec{})
	return r
}

func (r *Registry) Register(c Codec) { r.codecs[c.Name()] = c }

func (r *Registry) Lookup(name string) (Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

// Encode implements encode(enc[, strictness]).
func Encode(rt *gc.Runtime, th *mutator.Thread, s value.Value, c Codec, strict bool) (value.Value, error) {
	bytes, err := c.Encode(ToUnits(s), strict)
	if err != nil {
		return 0, err
	}
	units := make([]uint16, len(bytes))
	for i, b := range bytes {
		units[i] = uint16(b)
	}
	return FromBytes(rt, th, units)
}

// Decode implements decode(enc[, strictness]). In lax mode, a partial
// trailing character is replaced with U+FFFD rather than raising.
func Decode(rt *gc.Runtime, th *mutator.Thread, s value.Value, c Codec, strict bool) (value.Value, error) {
	raw := make([]byte, Length(s))
	for i := range raw {
		raw[i] = byte(CharAt(s, i))
	}
	units, unprocessed, err := c.Decode(raw, strict)
	if err != nil {
		if strict {
			return 0, err
		}
		units = append(units, replacementChar)
	} else if unprocessed > 0 {
		if strict {
			return 0, rterror.New(rterror.DecodeErr, "%d unprocessed trailing byte(s)", unprocessed)
		}
		units = append(units, replacementChar)
	}
	return FromBytes(rt, th, units)
}
