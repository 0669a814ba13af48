// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"testing"

	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/value"
)

type rig struct {
	rt *gc.Runtime
	th *mutator.Thread
}

func newRig(t *testing.T) *rig {
	rt, th := newFixture(t)
	return &rig{rt: rt, th: th}
}

func (r *rig) narrow(t *testing.T, s string) value.Value {
	t.Helper()
	v, w, err := NewNarrow(r.rt, r.th, len(s))
	if err != nil {
		t.Fatalf("NewNarrow: %v", err)
	}
	for i := 0; i < len(s); i++ {
		w(i, s[i])
	}
	return v
}

func (r *rig) text(t *testing.T, v value.Value) string {
	t.Helper()
	units := ToUnits(v)
	b := make([]byte, len(units))
	for i, u := range units {
		b[i] = byte(u)
	}
	return string(b)
}

func TestConcatNarrowPlusNarrow(t *testing.T) {
	r := newRig(t)
	a := r.narrow(t, "foo")
	b := r.narrow(t, "bar")
	out, err := Concat(r.rt, r.th, a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if got := r.text(t, out); got != "foobar" {
		t.Errorf("Concat = %q, want %q", got, "foobar")
	}
	if isWide(out) {
		t.Errorf("narrow+narrow concat should stay narrow")
	}
}

func TestConcatNarrowPlusWide(t *testing.T) {
	r := newRig(t)
	a := r.narrow(t, "foo")
	w, set, err := NewWide(r.rt, r.th, 1)
	if err != nil {
		t.Fatalf("NewWide: %v", err)
	}
	set(0, 0x3042)
	out, err := Concat(r.rt, r.th, a, w)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if !isWide(out) {
		t.Errorf("narrow+wide concat should widen")
	}
	if Length(out) != 4 {
		t.Fatalf("Length = %d, want 4", Length(out))
	}
}

func TestRepeatSingleCharUsesFill(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "x")
	out, err := Repeat(r.rt, r.th, s, 5)
	if err != nil {
		t.Fatalf("Repeat: %v", err)
	}
	if got := r.text(t, out); got != "xxxxx" {
		t.Errorf("Repeat = %q, want %q", got, "xxxxx")
	}
}

func TestRepeatMultiChar(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "ab")
	out, err := Repeat(r.rt, r.th, s, 3)
	if err != nil {
		t.Fatalf("Repeat: %v", err)
	}
	if got := r.text(t, out); got != "ababab" {
		t.Errorf("Repeat = %q, want %q", got, "ababab")
	}
}

func TestStripTrimsBothEnds(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "  \thello world\n ")
	out, err := Strip(r.rt, r.th, s)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if got := r.text(t, out); got != "hello world" {
		t.Errorf("Strip = %q, want %q", got, "hello world")
	}
}

func TestFindAndIndex(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "the quick brown fox")
	sub := r.narrow(t, "brown")
	if got := Find(s, sub, 0); got != 10 {
		t.Errorf("Find = %d, want 10", got)
	}
	missing := r.narrow(t, "slow")
	if got := Find(s, missing, 0); got != -1 {
		t.Errorf("Find(missing) = %d, want -1", got)
	}
	if _, ok := Index(s, missing); ok {
		t.Errorf("Index(missing) should report not found")
	}
}

func TestCount(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "abababab")
	sub := r.narrow(t, "ab")
	if got := Count(s, sub); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}
}

func TestReplace(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "one two one two one")
	old := r.narrow(t, "one")
	new_ := r.narrow(t, "ONE")
	out, err := Replace(r.rt, r.th, s, old, new_, -1)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := r.text(t, out); got != "ONE two ONE two ONE" {
		t.Errorf("Replace = %q", got)
	}

	limited, err := Replace(r.rt, r.th, s, old, new_, 1)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := r.text(t, limited); got != "ONE two one two one" {
		t.Errorf("Replace (max=1) = %q", got)
	}
}

func TestSplitWhitespace(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "  foo   bar baz  ")
	parts, err := Split(r.rt, r.th, s, 0, false, -1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"foo", "bar", "baz"}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i, p := range parts {
		if got := r.text(t, p); got != want[i] {
			t.Errorf("part %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestSplitWithSeparator(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "a,b,,c")
	sep := r.narrow(t, ",")
	parts, err := Split(r.rt, r.th, s, sep, true, -1)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"a", "b", "", "c"}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d", len(parts), len(want))
	}
	for i, p := range parts {
		if got := r.text(t, p); got != want[i] {
			t.Errorf("part %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestSplitEmptySeparatorIsValueError(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "abc")
	empty := r.narrow(t, "")
	if _, err := Split(r.rt, r.th, s, empty, true, -1); err == nil {
		t.Errorf("expected an error for an empty separator")
	}
}

func TestJoin(t *testing.T) {
	r := newRig(t)
	sep := r.narrow(t, ", ")
	parts := []value.Value{r.narrow(t, "a"), r.narrow(t, "b"), r.narrow(t, "c")}
	out, err := Join(r.rt, r.th, sep, parts)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := r.text(t, out); got != "a, b, c" {
		t.Errorf("Join = %q, want %q", got, "a, b, c")
	}
}

func TestStartsEndsWith(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "filename.txt")
	if !StartsWith(s, r.narrow(t, "file")) {
		t.Errorf("StartsWith should match prefix")
	}
	if !EndsWith(s, r.narrow(t, ".txt")) {
		t.Errorf("EndsWith should match suffix")
	}
	if EndsWith(s, r.narrow(t, ".png")) {
		t.Errorf("EndsWith should not match a non-suffix")
	}
}

func TestCompareAndHash(t *testing.T) {
	r := newRig(t)
	a := r.narrow(t, "apple")
	b := r.narrow(t, "banana")
	if Compare(a, b) >= 0 {
		t.Errorf("Compare(apple, banana) should be negative")
	}
	c := r.narrow(t, "apple")
	if !Equal(a, c) {
		t.Errorf("Equal should hold for equal content")
	}
	if Hash(a) != Hash(c) {
		t.Errorf("Hash should agree for equal strings")
	}
}

func TestUpperLower(t *testing.T) {
	r := newRig(t)
	s := r.narrow(t, "Hello, World!")
	up, err := Upper(r.rt, r.th, s)
	if err != nil {
		t.Fatalf("Upper: %v", err)
	}
	if got := r.text(t, up); got != "HELLO, WORLD!" {
		t.Errorf("Upper = %q", got)
	}
	low, err := Lower(r.rt, r.th, s)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if got := r.text(t, low); got != "hello, world!" {
		t.Errorf("Lower = %q", got)
	}
}
