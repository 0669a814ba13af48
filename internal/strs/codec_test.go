// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "testing"

func TestASCIICodecRoundTrip(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "Hello, ASCII!")
	c := asciiCodec{}
	encoded, err := Encode(r.rt, r.th, s, c, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(r.rt, r.th, encoded, c, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := r.text(t, decoded); got != "Hello, ASCII!" {
		t.Errorf("round trip = %q", got)
	}
}

func TestASCIICodecStrictRejectsNonASCII(t *testing.T) {
	r := newRig(t)
	w, set, err := NewWide(r.rt, r.th, 1)
	if err != nil {
		t.Fatalf("NewWide: %v", err)
	}
	set(0, 0x3042)
	c := asciiCodec{}
	if _, err := Encode(r.rt, r.th, w, c, true); err == nil {
		t.Errorf("expected strict ascii encode to fail on non-ascii input")
	}
	if _, err := Encode(r.rt, r.th, w, c, false); err != nil {
		t.Errorf("lax ascii encode should not fail: %v", err)
	}
}

func TestUTF8CodecRoundTrip(t *testing.T) {
	r := newRig(t)
	w, set, err := NewWide(r.rt, r.th, 3)
	if err != nil {
		t.Fatalf("NewWide: %v", err)
	}
	for i, c := range []uint16{0x3042, 0x3044, 0x3046} {
		set(i, c)
	}
	c := utf8Codec{}
	encoded, err := Encode(r.rt, r.th, w, c, true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(r.rt, r.th, encoded, c, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if Length(decoded) != 3 {
		t.Fatalf("Length = %d, want 3", Length(decoded))
	}
	for i, want := range []uint16{0x3042, 0x3044, 0x3046} {
		if got := CharAt(decoded, i); got != want {
			t.Errorf("CharAt(%d) = %#x, want %#x", i, got, want)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("ascii"); !ok {
		t.Errorf("expected ascii codec to be registered")
	}
	if _, ok := reg.Lookup("utf8"); !ok {
		t.Errorf("expected utf8 codec to be registered")
	}
	if _, ok := reg.Lookup("nonexistent"); ok {
		t.Errorf("unregistered codec should not be found")
	}
}
