// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "golang.org/x/alorert/internal/rterror"

// asciiCodec implements the 7-bit ASCII encoding: every code unit above
// 0x7f is a strict-mode encode failure (grounded on the original's ascii
// codec table, original_source/src/encodings_module.c).
type asciiCodec struct{}

func (asciiCodec) Name() string { return "ascii" }

func (asciiCodec) Encode(units []uint16, strict bool) ([]byte, error) {
	out := make([]byte, 0, len(units))
	for _, u := range units {
		if u > 0x7f {
			if strict {
				return nil, rterror.New(rterror.EncodeErr, "character U+%04X not in ascii range", u)
			}
			out = append(out, byte(replacementChar&0xff))
			continue
		}
		out = append(out, byte(u))
	}
	return out, nil
}

func (asciiCodec) Decode(in []byte, strict bool) ([]uint16, int, error) {
	out := make([]uint16, 0, len(in))
	for _, b := range in {
		if b > 0x7f {
			if strict {
				return out, 0, rterror.New(rterror.DecodeErr, "byte 0x%02x not in ascii range", b)
			}
			out = append(out, replacementChar)
			continue
		}
		out = append(out, uint16(b))
	}
	return out, 0, nil
}
