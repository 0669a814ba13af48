// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import "golang.org/x/alorert/internal/rterror"

// Error is the concrete error type every core operation returns on its
// direct path, and the type stashed on a Thread's pending-exception cell
// on the non-direct path (spec.md §7).
type Error = rterror.Error

// ErrorKind classifies an Error, matching spec.md §7's table.
type ErrorKind = rterror.Kind

const (
	MemoryError  = rterror.Memory
	ValueError   = rterror.ValueErr
	TypeError    = rterror.TypeErr
	IndexError   = rterror.IndexErr
	RuntimeError = rterror.Runtime
	DecodeError  = rterror.DecodeErr
	EncodeError  = rterror.EncodeErr
)

// Sentinel errors satisfying errors.Is for conditions with no per-call
// message.
var (
	ErrOutOfMemory    = rterror.ErrOutOfMemory
	ErrInvalidRange   = rterror.ErrInvalidRange
	ErrEmptySep       = rterror.ErrEmptySep
	ErrLengthOverflow = rterror.ErrLengthOverflow
)

// NewError builds an *Error of the given kind, for interpreter code that
// needs to raise a core-shaped error of its own (e.g. an out-of-range
// index reported by generated bytecode rather than this module).
func NewError(k ErrorKind, format string, args ...interface{}) *Error {
	return rterror.New(k, format, args...)
}
