// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "testing"

func TestStrShortInt(t *testing.T) {
	r := newRig(t)
	n := -42
	out, err := Str(r.rt, r.th, Convertible{ShortInt: &n})
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if got := r.text(t, out); got != "-42" {
		t.Errorf("Str(-42) = %q, want %q", got, "-42")
	}
}

func TestStrStringIsIdentity(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "already a string")
	out, err := Str(r.rt, r.th, Convertible{Str: s, HasStr: true})
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if out != s {
		t.Errorf("Str(string) should return the same value")
	}
}

func TestStrInstanceWithoutDunderStr(t *testing.T) {
	r := newRig(t)
	out, err := Str(r.rt, r.th, Convertible{TypeName: "Point"})
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if got := r.text(t, out); got != "<Point instance>" {
		t.Errorf("Str(no _str) = %q, want %q", got, "<Point instance>")
	}
}

type fakeNamed struct{ name string }

func (f fakeNamed) QualifiedName() string { return f.name }

func TestStrNamed(t *testing.T) {
	r := newRig(t)
	out, err := Str(r.rt, r.th, Convertible{Named: fakeNamed{"std::Map"}})
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if got := r.text(t, out); got != "std::Map" {
		t.Errorf("Str(named) = %q, want %q", got, "std::Map")
	}
}

func TestStrFloat(t *testing.T) {
	r := newRig(t)
	f := 3.5
	out, err := Str(r.rt, r.th, Convertible{Float: &f})
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if got := r.text(t, out); got != "3.5" {
		t.Errorf("Str(3.5) = %q, want %q", got, "3.5")
	}
}
