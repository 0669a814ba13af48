// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestHeapstatCmdPrintsTable(t *testing.T) {
	cmd := heapstatCmd()
	var buf bytes.Buffer
	cmd.SetOutput(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "heap size") {
		t.Errorf("expected a heap size row, got %q", out)
	}
}

func TestGcdumpCmdReportsBeforeAndAfter(t *testing.T) {
	cmd := gcdumpCmd()
	var buf bytes.Buffer
	cmd.SetOutput(&buf)
	cmd.SetArgs([]string{"--objects", "16", "--object-size", "24"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "before:") || !strings.Contains(out, "after:") {
		t.Errorf("expected before/after lines, got %q", out)
	}
}

func TestStrdumpCmdExercisesStringOps(t *testing.T) {
	cmd := strdumpCmd()
	var buf bytes.Buffer
	cmd.SetOutput(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"concat:", "upper:", "slice:", "repeat:", "wide:", "utf8:", "hash("} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
	if !strings.Contains(out, "HELLO, WORLD!") {
		t.Errorf("expected uppercased greeting in output, got %q", out)
	}
}

func TestBenchCmdReportsThroughput(t *testing.T) {
	cmd := benchCmd()
	var buf bytes.Buffer
	cmd.SetOutput(&buf)
	cmd.SetArgs([]string{"--iterations", "500", "--survive-every", "5"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "allocations:") || !strings.Contains(out, "rate:") {
		t.Errorf("expected allocation/rate lines, got %q", out)
	}
}
