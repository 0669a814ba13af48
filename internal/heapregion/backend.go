// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heapregion

// New selects the most capable Backend for the running platform: the
// mmap/mremap backend on Linux, the VirtualAlloc reserve/commit backend on
// Windows, and the portable aligned-allocation fallback everywhere else
// (notably Darwin and BSDs, which have mmap but no mremap).
func New(cfg Config) Backend {
	return newPlatformDefault(cfg)
}
