// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alorert is the external surface of the core runtime (spec.md
// §6): tagged values, a generational garbage collector, a segregated
// free-list allocator and a three-representation string subsystem,
// assembled behind a single Runtime a host interpreter drives. Every
// exported name here forwards to one of the internal/* packages that
// hold the actual implementation; this package's job is wiring and a
// stable, documented call surface, not new logic.
package alorert

import (
	"golang.org/x/alorert/internal/falloc"
	"golang.org/x/alorert/internal/gc"
	"golang.org/x/alorert/internal/heapregion"
	"golang.org/x/alorert/internal/nursery"
	"golang.org/x/alorert/internal/runtimelog"
	"golang.org/x/alorert/internal/strs"
	"golang.org/x/alorert/internal/value"
)

// Config bundles the environment/config knobs spec.md §6 says the core
// honors, with zero values meaning "use the package default" throughout
// (the idiomatic Go analog of aconfig.h's #define knobs, per SPEC_FULL.md
// §0's configuration note).
type Config struct {
	// MaxHeapSize bounds the old generation; 0 means unbounded (matching
	// the original's "effectively unbounded on 64-bit" default).
	MaxHeapSize uintptr
	// NurserySize sets the initial nursery size; 0 uses
	// nursery.DefaultSize.
	NurserySize uintptr
	// AddressRange restricts both generations to a sub-range of the
	// address space (spec.md §3.3); the zero value is unrestricted.
	AddressRange heapregion.AddressRange
	// PreferredOldGenBase/PreferredNurseryBase are advisory base-address
	// hints passed to the backend.
	PreferredOldGenBase  uintptr
	PreferredNurseryBase uintptr
	// SmallIntCacheRange is the symmetric range [-n, n] cached by
	// internal/value.SmallIntCache; 0 disables the cache.
	SmallIntCacheRange int
	// Verbose gates runtimelog output from every internal package.
	Verbose bool
}

// Runtime is the single object a host interpreter allocates through and
// drives the collector with. It owns the heap backend, the allocator and
// nursery beneath internal/gc.Runtime, the small-integer cache, and the
// identity-hash wiring that lets internal/value.HashValue dispatch to a
// live runtime instance without internal/value importing internal/gc.
type Runtime struct {
	gc       *gc.Runtime
	old      *falloc.Allocator
	nursery  *nursery.Nursery
	smallInt *value.SmallIntCache

	codecRegistry *strs.Registry
}

// New builds a Runtime from cfg, acquiring its initial heap chunk and
// nursery region from the platform's default heapregion.Backend.
func New(cfg Config) (*Runtime, error) {
	runtimelog.Verbose = cfg.Verbose

	backend := heapregion.New(heapregion.Config{
		Range:                cfg.AddressRange,
		PreferredOldGenBase:  cfg.PreferredOldGenBase,
		PreferredNurseryBase: cfg.PreferredNurseryBase,
	})

	old := falloc.New(backend, cfg.MaxHeapSize)

	nurserySize := cfg.NurserySize
	if nurserySize == 0 {
		nurserySize = nursery.DefaultSize
	}
	nur, err := nursery.New(backend, nurserySize)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		gc:      gc.NewRuntime(old, nur),
		old:     old,
		nursery: nur,
	}
	if cfg.SmallIntCacheRange > 0 {
		r.smallInt = value.NewSmallIntCache(cfg.SmallIntCacheRange)
	}

	wireIdentityHash(r.gc)

	// A throwaway thread to perform the handful of allocations New itself
	// needs before any host thread has registered (the shared empty-
	// string constants); dropped again once they are built.
	boot := r.gc.Threads().Register(0, 4)
	err = strs.InitEmptyConstants(r.gc, boot)
	r.gc.Threads().Unregister(boot)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewThread registers a new mutator thread with the runtime, returning
// the handle the caller uses for every subsequent core operation on that
// thread (spec.md §3.4/§4.9). stackCap/tempCap size its value stack and
// temporary slot array.
func (r *Runtime) NewThread(stackCap, tempCap int) *Thread {
	return &Thread{rt: r, th: r.gc.Threads().Register(stackCap, tempCap)}
}

// DropThread unregisters th, e.g. when the owning OS thread exits.
func (r *Runtime) DropThread(th *Thread) {
	r.gc.Threads().Unregister(th.th)
}

// Stats returns a snapshot of collector counters (SPEC_FULL.md §3's
// heap-growth-statistics supplement).
func (r *Runtime) Stats() gc.Stats { return r.gc.Stats() }

// AllocatorStats returns a snapshot of the old-generation allocator's
// counters.
func (r *Runtime) AllocatorStats() falloc.Stats { return r.old.Stats() }

// HeapSize returns the current old-generation heap size in bytes.
func (r *Runtime) HeapSize() uintptr { return r.old.HeapSize() }
