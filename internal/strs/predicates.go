// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strs

import "golang.org/x/alorert/internal/value"

// IsStr reports whether v is one of this package's physical string
// representations (spec.md §6's is-str), as opposed to an interpreter
// instance or any other heap block kind.
func IsStr(v value.Value) bool {
	return isStringValue(v)
}

// IsNarrowStr/IsWideStr/IsSubStr are the representation-specific
// predicates spec.md §6 lists alongside is-str. Each assumes IsStr(v)
// already holds; callers check IsStr first, matching the original's
// layered predicate style.
func IsNarrowStr(v value.Value) bool {
	return !isSubstring(v) && !isWide(v)
}

func IsWideStr(v value.Value) bool {
	return !isSubstring(v) && isWide(v)
}

func IsSubStr(v value.Value) bool {
	return isSubstring(v)
}
