// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command alorertool drives a standalone alorert.Runtime for inspection
// and micro-benchmarking, the way cmd/viewcore drives a gocore.Process
// against a captured core file — except alorertool builds and owns its
// own live runtime instance rather than reading another process's
// memory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "alorertool",
		Short: "Inspect and exercise an alorert core runtime instance",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable runtime debug logging")

	root.AddCommand(heapstatCmd())
	root.AddCommand(gcdumpCmd())
	root.AddCommand(strdumpCmd())
	root.AddCommand(benchCmd())
	root.AddCommand(replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
