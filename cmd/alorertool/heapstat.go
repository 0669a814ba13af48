// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"golang.org/x/alorert"
)

// heapstatCmd prints live/free byte totals for a freshly built runtime,
// mirroring cmd/viewcore's "overview"/"breakdown" commands but against a
// runtime this process itself constructs rather than a core dump.
func heapstatCmd() *cobra.Command {
	var maxHeap uint64
	var nurserySize uint64

	cmd := &cobra.Command{
		Use:   "heapstat",
		Short: "Print live/free byte totals for a freshly built runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := alorert.New(alorert.Config{
				MaxHeapSize: uintptr(maxHeap),
				NurserySize: uintptr(nurserySize),
				Verbose:     verbose,
			})
			if err != nil {
				return err
			}
			stats := rt.AllocatorStats()
			t := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', tabwriter.AlignRight)
			fmt.Fprintf(t, "metric\tvalue\n")
			fmt.Fprintf(t, "heap size\t%d\n", rt.HeapSize())
			fmt.Fprintf(t, "alloc count\t%d\n", stats.AllocCount)
			fmt.Fprintf(t, "bytes allocated\t%d\n", stats.BytesAlloc)
			fmt.Fprintf(t, "free count\t%d\n", stats.FreeCount)
			fmt.Fprintf(t, "bytes freed\t%d\n", stats.BytesFreed)
			fmt.Fprintf(t, "heap growths\t%d\n", stats.GrowCount)
			fmt.Fprintf(t, "bytes grown\t%d\n", stats.GrowBytes)
			return t.Flush()
		},
	}
	cmd.Flags().Uint64Var(&maxHeap, "max-heap", 0, "maximum old-generation heap size in bytes (0 = unbounded)")
	cmd.Flags().Uint64Var(&nurserySize, "nursery-size", 0, "initial nursery size in bytes (0 = default)")
	return cmd
}
