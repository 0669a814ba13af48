// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alorert

import "golang.org/x/alorert/internal/gc"

// MarkStepBudget is the default number of gray objects the incremental
// old-generation collector processes per CollectGarbage call.
const MarkStepBudget = gc.MarkStepBudget

// CollectGarbage advances the incremental old-generation collector by one
// bounded slice of work (spec.md §6's collect-garbage(), "an increment").
// It is a no-op if no cycle is in progress; a cycle starts automatically
// once old-generation allocation crosses its trigger fraction
// (internal/gc.Runtime.noteOldAlloc).
func (r *Runtime) CollectGarbage() error {
	return r.gc.StepOldGen(MarkStepBudget)
}

// CollectGarbageForced runs the incremental old-generation collector to
// completion right now instead of pacing it against allocation (spec.md
// §6's collect-garbage-forced()).
func (r *Runtime) CollectGarbageForced() error {
	return r.gc.ForceFullCollection()
}

// CollectAllGarbage runs both a young-generation collection and a
// complete old-generation cycle (spec.md §6's collect-all-garbage()):
// identical to CollectGarbageForced, since this collector's young
// generation always promotes every survivor on its own collection and
// has no separate "collect old without touching young" mode.
func (r *Runtime) CollectAllGarbage() error {
	return r.gc.ForceFullCollection()
}

// CollectNewGen runs a single young-generation collection, stopping the
// world for its duration (spec.md §6's collect-new-gen(force-retire); this
// collector has no separate non-retiring mode for big blocks — every
// reachable big block is always retired into the old generation by
// reference on its first collection, spec.md §4.4 — so force-retire is
// this collector's only behavior).
func (r *Runtime) CollectNewGen() error {
	return r.gc.CollectNewGen()
}

// GCStats is a snapshot of collector counters (SPEC_FULL.md §3's
// heap-growth-statistics supplement).
type GCStats = gc.Stats
