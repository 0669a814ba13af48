// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/alorert"
)

// gcdumpCmd drives a synthetic allocation workload, forces a full
// collection, and prints the before/after collector state transitions
// (SPEC_FULL.md §3's heap-growth-statistics supplement, exposed for
// inspection the way cmd/viewcore's "breakdown" command exposes
// gocore.Stats).
func gcdumpCmd() *cobra.Command {
	var objects int
	var objSize int

	cmd := &cobra.Command{
		Use:   "gcdump",
		Short: "Force a full collection and print GC state transitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := alorert.New(alorert.Config{Verbose: verbose})
			if err != nil {
				return err
			}
			th := rt.NewThread(64, 16)
			defer rt.DropThread(th)

			for i := 0; i < objects; i++ {
				v, err := rt.Alloc(th, uintptr(objSize), alorert.KindNonPointer)
				if err != nil {
					return fmt.Errorf("alloc %d: %w", i, err)
				}
				// Keep every allocation reachable from the stack so the
				// collection this command forces actually has live
				// survivors to promote, not just garbage to discard.
				th.PushValue(v)
			}

			before := rt.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "before: young=%d old=%d promoted=%d marked=%d swept=%d\n",
				before.YoungCollections, before.OldCollections, before.BytesPromoted, before.BytesMarked, before.BytesSwept)

			if err := rt.CollectAllGarbage(); err != nil {
				return err
			}

			after := rt.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "after:  young=%d old=%d promoted=%d marked=%d swept=%d\n",
				after.YoungCollections, after.OldCollections, after.BytesPromoted, after.BytesMarked, after.BytesSwept)
			return nil
		},
	}
	cmd.Flags().IntVar(&objects, "objects", 1000, "number of objects to allocate before collecting")
	cmd.Flags().IntVar(&objSize, "object-size", 32, "size in bytes of each allocated object")
	return cmd
}
