// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapregion

import "testing"

func TestPortableBackendGrowHeap(t *testing.T) {
	b := NewPortableBackend(Config{})
	c1, size1, err := b.GrowHeap(nil, 100)
	if err != nil {
		t.Fatalf("GrowHeap(nil, 100): %v", err)
	}
	if size1 < 100 {
		t.Fatalf("GrowHeap returned %d bytes, want >= 100", size1)
	}
	if c1.Addr%allocUnit != 0 {
		t.Errorf("chunk address %#x not aligned to %d", c1.Addr, allocUnit)
	}
	c2, _, err := b.GrowHeap(c1, 200)
	if err != nil {
		t.Fatalf("GrowHeap(c1, 200): %v", err)
	}
	if c2.Addr == c1.Addr {
		t.Errorf("expected a distinct chunk, portable backend never grows in place")
	}
	if err := b.FreeChunk(c1); err != nil {
		t.Errorf("FreeChunk: %v", err)
	}
}

func TestPortableBackendGrowNursery(t *testing.T) {
	b := NewPortableBackend(Config{})
	p1, err := b.GrowNursery(0, 0, 64)
	if err != nil {
		t.Fatalf("GrowNursery(0,0,64): %v", err)
	}
	if p1 == 0 {
		t.Fatalf("GrowNursery returned nil pointer")
	}
	p2, err := b.GrowNursery(p1, 64, 128)
	if err != nil {
		t.Fatalf("GrowNursery(p1,64,128): %v", err)
	}
	if p2 == 0 {
		t.Fatalf("GrowNursery growth returned nil pointer")
	}
}

func TestAddressRangeContains(t *testing.T) {
	r := AddressRange{Min: 0x1000, Max: 0x2000}
	if !r.Contains(0x1000, 0x100) {
		t.Errorf("expected range to contain [0x1000, 0x1100)")
	}
	if r.Contains(0x1f00, 0x200) {
		t.Errorf("expected range to reject [0x1f00, 0x2100)")
	}
	unrestricted := AddressRange{}
	if !unrestricted.Contains(0xdeadbeef, 0x1000) {
		t.Errorf("zero-value AddressRange should be unrestricted")
	}
}
