// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

// freeNode is the free-list bookkeeping record for one free block. Per
// spec.md §9's design note on raw pointers, list linkage lives in ordinary
// Go-managed structures (a typed wrapper per list kind) rather than being
// physically embedded in the freed bytes; only the block's header word
// (see words.go) is written into the heap itself, since that is what the
// sweep phase needs to reconstruct layout by walking memory.
type freeNode struct {
	addr uintptr
	size uintptr

	next  *freeNode // next distinct size in this list (nonuniform lists only)
	child *freeNode // same-size duplicate chain (nonuniform lists only)
}

// freeLists holds the NumFreeLists segregated lists described in
// spec.md §4.3. Lists below firstNonuniformIndex hold blocks of exactly
// one size each (any member will do); at or above it, freeNode.next
// chains distinct sizes in ascending order and freeNode.child chains
// duplicates of the same size, giving O(1) amortized lookup of an
// exact-size match.
type freeLists struct {
	heads [NumFreeLists]*freeNode
}

// insert adds a free block to its size class.
func (f *freeLists) insert(addr, size uintptr) {
	idx := classIndex(size)
	n := &freeNode{addr: addr, size: size}
	if idx < firstNonuniformIndex {
		// Uniform list: every member has the same size, order doesn't
		// matter.
		n.next = f.heads[idx]
		f.heads[idx] = n
		return
	}
	f.insertSorted(idx, n)
}

func (f *freeLists) insertSorted(idx int, n *freeNode) {
	head := f.heads[idx]
	if head == nil {
		f.heads[idx] = n
		return
	}
	if head.size == n.size {
		n.child = head
		f.heads[idx] = n
		return
	}
	if n.size < head.size {
		n.next = head
		f.heads[idx] = n
		return
	}
	prev := head
	for prev.next != nil && prev.next.size < n.size {
		prev = prev.next
	}
	if prev.next != nil && prev.next.size == n.size {
		n.child = prev.next
		prev.next = n
		return
	}
	n.next = prev.next
	prev.next = n
}

// removeHead pops and returns the head node of list idx, or nil if empty.
// For a node with duplicates (a populated child chain) the duplicate
// takes the head's place so the list stays sorted without a rescan.
func (f *freeLists) removeHead(idx int) *freeNode {
	n := f.heads[idx]
	if n == nil {
		return nil
	}
	if n.child != nil {
		child := n.child
		child.next = n.next
		f.heads[idx] = child
	} else {
		f.heads[idx] = n.next
	}
	n.next, n.child = nil, nil
	return n
}

// findFit searches list idx for the smallest entry that can satisfy size,
// removing and returning it. Used only for nonuniform lists, which are
// kept sorted ascending.
func (f *freeLists) findFit(idx int, size uintptr) *freeNode {
	var prev *freeNode
	for n := f.heads[idx]; n != nil; n = n.next {
		if isLargeEnough(n.size, size) {
			if n.child != nil {
				// A duplicate stands in for the removed node, no
				// relinking of prev/next required.
				child := n.child
				child.next = n.next
				if prev == nil {
					f.heads[idx] = child
				} else {
					prev.next = child
				}
			} else if prev == nil {
				f.heads[idx] = n.next
			} else {
				prev.next = n.next
			}
			n.next, n.child = nil, nil
			return n
		}
		prev = n
	}
	return nil
}

// firstNonEmptyFrom scans lists [from, NumFreeLists) for the first
// nonempty one and pops its head. Any entry found this way is guaranteed
// large enough for the original request: list boundaries are
// monotonically increasing, so a block in a higher list is always larger
// than anything that could have fit in a lower one (spec.md §4.3 step 2,
// "advance to the next list with any block").
func (f *freeLists) firstNonEmptyFrom(from int) *freeNode {
	for idx := from; idx < NumFreeLists; idx++ {
		if n := f.removeHead(idx); n != nil {
			return n
		}
	}
	return nil
}
