// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// Stats accumulates collector-observable counters, supplementing spec.md
// with the kind of collection statistics the original exposes through its
// --debug-gc flag (original_source/src/debug_runtime.c).
type Stats struct {
	YoungCollections uint64
	OldCollections   uint64
	BytesPromoted    uint64
	BytesMarked      uint64
	BytesSwept       uint64
	ObjectsSwept     uint64
	ShadeEvents      uint64
	RememberEvents   uint64
}
