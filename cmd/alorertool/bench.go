// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"golang.org/x/alorert"
)

// benchCmd drives the nursery and the old-generation free-list allocator
// with a synthetic, varied-size allocation workload, reporting throughput
// and the resulting collector statistics. It is deliberately not a
// go test -bench benchmark: the point is to watch a long-running mutator
// pattern (the mix of short-lived and long-lived objects a real
// interpreter produces) trip nursery and old-gen collections under
// realistic pressure, not to micro-measure a single call.
func benchCmd() *cobra.Command {
	var iterations int
	var surviveEvery int
	var minSize, maxSize int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive the allocator with a synthetic allocation workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := alorert.New(alorert.Config{Verbose: verbose})
			if err != nil {
				return err
			}
			th := rt.NewThread(256, 16)
			defer rt.DropThread(th)

			start := time.Now()
			span := maxSize - minSize + 1
			if span <= 0 {
				span = 1
			}
			for i := 0; i < iterations; i++ {
				size := uintptr(minSize + (i % span))
				v, err := rt.Alloc(th, size, alorert.KindNonPointer)
				if err != nil {
					return fmt.Errorf("alloc at iteration %d: %w", i, err)
				}
				if surviveEvery > 0 && i%surviveEvery == 0 {
					// A fraction of allocations stay referenced from the
					// stack, forcing the nursery collector to actually
					// promote rather than discard everything it scans.
					th.PushValue(v)
				} else {
					th.SafePoint()
				}
			}
			elapsed := time.Since(start)

			stats := rt.Stats()
			allocStats := rt.AllocatorStats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "allocations:       %d\n", iterations)
			fmt.Fprintf(out, "elapsed:           %s\n", elapsed)
			fmt.Fprintf(out, "rate:              %.0f allocs/sec\n", float64(iterations)/elapsed.Seconds())
			fmt.Fprintf(out, "young collections: %d\n", stats.YoungCollections)
			fmt.Fprintf(out, "old collections:   %d\n", stats.OldCollections)
			fmt.Fprintf(out, "bytes promoted:    %d\n", stats.BytesPromoted)
			fmt.Fprintf(out, "old-gen heap size: %d\n", rt.HeapSize())
			fmt.Fprintf(out, "old-gen allocs:    %d\n", allocStats.AllocCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 200000, "number of allocations to perform")
	cmd.Flags().IntVar(&surviveEvery, "survive-every", 7, "keep every nth allocation reachable (0 disables survivors)")
	cmd.Flags().IntVar(&minSize, "min-size", 16, "minimum object size in bytes")
	cmd.Flags().IntVar(&maxSize, "max-size", 256, "maximum object size in bytes")
	return cmd
}
