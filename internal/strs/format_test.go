// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "testing"

func TestFormatLiteralAndEscapes(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "{{literal}} plain {0:} end")
	out, err := Format(r.rt, r.th, f, []FormatArg{{Str: r.narrow(t, "arg"), HasStr: true}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "{literal} plain arg end" {
		t.Errorf("Format = %q", got)
	}
}

func TestFormatWidthAndAlignment(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "[{5:}][{-5:}]")
	out, err := Format(r.rt, r.th, f, []FormatArg{
		{Str: r.narrow(t, "x"), HasStr: true},
		{Str: r.narrow(t, "x"), HasStr: true},
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "[    x][x    ]" {
		t.Errorf("Format = %q", got)
	}
}

func TestFormatFixedPointSpec(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "{:00.00}")
	pi := 3.14159
	out, err := Format(r.rt, r.th, f, []FormatArg{{Float: &pi}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "03.14" {
		t.Errorf("Format = %q, want %q", got, "03.14")
	}
}

func TestFormatNonFiniteFloat(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "{:0.00}")
	inf := posInf()
	out, err := Format(r.rt, r.th, f, []FormatArg{{Float: &inf}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "inf" {
		t.Errorf("Format(inf) = %q, want %q", got, "inf")
	}
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func TestFormatScientificNotation(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "{:0.00e+00}")
	v := 12345.6789
	out, err := Format(r.rt, r.th, f, []FormatArg{{Float: &v}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "1.23e+04" {
		t.Errorf("Format = %q, want %q", got, "1.23e+04")
	}
}

func TestFormatGenericStrFallback(t *testing.T) {
	r := newRig(t)
	f := r.narrow(t, "n={}")
	n := 42
	out, err := Format(r.rt, r.th, f, []FormatArg{{ShortInt: &n}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := r.text(t, out); got != "n=42" {
		t.Errorf("Format = %q, want %q", got, "n=42")
	}
}
