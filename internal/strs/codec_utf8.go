// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"unicode/utf8"

	"golang.org/x/alorert/internal/rterror"
)

// utf8Codec implements the utf8 encoding. Decode reports the number of
// trailing bytes that form an incomplete (but possibly valid-so-far)
// sequence as "unprocessed", rather than decoding it as
// utf8.RuneError/replacement itself; codec.go's Decode wrapper applies the
// strict/lax policy over that remainder uniformly for every codec.
type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf8" }

func (utf8Codec) Encode(units []uint16, strict bool) ([]byte, error) {
	out := make([]byte, 0, len(units))
	buf := make([]byte, utf8.UTFMax)
	for _, u := range units {
		n := utf8.EncodeRune(buf, rune(u))
		out = append(out, buf[:n]...)
	}
	return out, nil
}

func (utf8Codec) Decode(in []byte, strict bool) ([]uint16, int, error) {
	var out []uint16
	i := 0
	for i < len(in) {
		r, size := utf8.DecodeRune(in[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(in[i:]) {
				// A valid prefix cut off by the end of the input rather
				// than invalid input; report it as unprocessed so the
				// caller's strict/lax policy decides.
				return out, len(in) - i, nil
			}
			if strict {
				return out, 0, rterror.New(rterror.DecodeErr, "invalid utf8 byte sequence at offset %d", i)
			}
			out = append(out, replacementChar)
			i++
			continue
		}
		out = append(out, uint16(r))
		i += size
	}
	return out, 0, nil
}
