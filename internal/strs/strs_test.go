// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import (
	"testing"

	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/heapregion"
	"golang.org/x/alorert/internal/mutator"
	"golang.org/x/alorert/internal/nursery"
)

func newFixture(t *testing.T) (*gc.Runtime, *mutator.Thread) {
	t.Helper()
	b := heapregion.NewPortableBackend(heapregion.Config{})
	old := falloc.New(b, 0)
	nur, err := nursery.New(b, 1<<16)
	if err != nil {
		t.Fatalf("nursery.New: %v", err)
	}
	rt := gc.NewRuntime(old, nur)
	th := rt.Threads().Register(16, 16)
	return rt, th
}

func TestNarrowRoundTrip(t *testing.T) {
	rt, th := newFixture(t)
	v, w, err := NewNarrow(rt, th, 5)
	if err != nil {
		t.Fatalf("NewNarrow: %v", err)
	}
	for i, c := range []byte("hello") {
		w(i, c)
	}
	if Length(v) != 5 {
		t.Errorf("Length = %d, want 5", Length(v))
	}
	for i, want := range []byte("hello") {
		if got := CharAt(v, i); got != uint16(want) {
			t.Errorf("CharAt(%d) = %d, want %d", i, got, want)
		}
	}
	if isWide(v) {
		t.Errorf("narrow string reported as wide")
	}
}

func TestWideRoundTrip(t *testing.T) {
	rt, th := newFixture(t)
	v, w, err := NewWide(rt, th, 3)
	if err != nil {
		t.Fatalf("NewWide: %v", err)
	}
	units := []uint16{0x3042, 0x3044, 0x3046}
	for i, c := range units {
		w(i, c)
	}
	if Length(v) != 3 {
		t.Errorf("Length = %d, want 3", Length(v))
	}
	for i, want := range units {
		if got := CharAt(v, i); got != want {
			t.Errorf("CharAt(%d) = %#x, want %#x", i, got, want)
		}
	}
	if !isWide(v) {
		t.Errorf("wide string reported as narrow")
	}
}

func TestSubstringView(t *testing.T) {
	rt, th := newFixture(t)
	v, w, err := NewNarrow(rt, th, 20)
	if err != nil {
		t.Fatalf("NewNarrow: %v", err)
	}
	for i, c := range []byte("0123456789abcdefghij") {
		w(i, c)
	}
	SubstringThreshold = 4
	sub, err := Slice(rt, th, v, 5, 15)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if !isSubstring(sub) {
		t.Errorf("expected Slice to build a substring view above the threshold")
	}
	if Length(sub) != 10 {
		t.Fatalf("Length = %d, want 10", Length(sub))
	}
	if got := CharAt(sub, 0); got != '5' {
		t.Errorf("CharAt(sub, 0) = %q, want '5'", rune(got))
	}
}

func TestSliceBelowThresholdCopies(t *testing.T) {
	rt, th := newFixture(t)
	v, w, err := NewNarrow(rt, th, 10)
	if err != nil {
		t.Fatalf("NewNarrow: %v", err)
	}
	for i, c := range []byte("0123456789") {
		w(i, c)
	}
	SubstringThreshold = 100
	out, err := Slice(rt, th, v, 2, 5)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if isSubstring(out) {
		t.Errorf("expected a copy below the threshold, got a substring view")
	}
	if Length(out) != 3 {
		t.Fatalf("Length = %d, want 3", Length(out))
	}
}

func TestSliceNegativeAndOutOfRangeIndices(t *testing.T) {
	rt, th := newFixture(t)
	v, w, err := NewNarrow(rt, th, 5)
	if err != nil {
		t.Fatalf("NewNarrow: %v", err)
	}
	for i, c := range []byte("abcde") {
		w(i, c)
	}
	out, err := Slice(rt, th, v, -3, 100)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if Length(out) != 3 {
		t.Fatalf("Length = %d, want 3 (cde)", Length(out))
	}
	if got := CharAt(out, 0); got != 'c' {
		t.Errorf("CharAt(out, 0) = %q, want 'c'", rune(got))
	}

	swapped, err := Slice(rt, th, v, 4, 1)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if Length(swapped) != 0 {
		t.Errorf("swapped-index slice should be empty, got length %d", Length(swapped))
	}
}
