// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/alorert"
)

// strdumpCmd exercises the string subsystem against a small fixed script
// of operations, printing each result — a scripted smoke test for the
// three representations and the core string operations, runnable without
// an interpreter attached.
func strdumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strdump",
		Short: "Exercise the string subsystem against a small script of operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := alorert.New(alorert.Config{Verbose: verbose})
			if err != nil {
				return err
			}
			th := rt.NewThread(32, 16)
			defer rt.DropThread(th)
			out := cmd.OutOrStdout()

			hello, err := rt.CreateString(th, []byte("Hello, "))
			if err != nil {
				return err
			}
			world, err := rt.CreateString(th, []byte("world!"))
			if err != nil {
				return err
			}
			greeting, err := rt.ConcatStrings(th, hello, world)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "concat: %s\n", dump(rt, greeting))

			upper, err := rt.Upper(th, greeting)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "upper:  %s\n", dump(rt, upper))

			sliced, err := rt.Slice(th, greeting, 7, 12)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "slice:  %s (is-sub-str=%v)\n", dump(rt, sliced), alorert.IsSubStr(sliced))

			repeated, err := rt.Repeat(th, hello, 3)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "repeat: %s\n", dump(rt, repeated))

			wide, err := rt.CreateWideString(th, []uint16{0x4e2d, 0x6587, ' ', 'o', 'k'})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "wide:   %s (is-wide-str=%v)\n", dump(rt, wide), alorert.IsWideStr(wide))

			utf8Bytes, err := rt.GetUTF8(wide)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "utf8:   %q\n", utf8Bytes)

			fmt.Fprintf(out, "hash(%q) = %#x\n", dump(rt, greeting), alorert.HashValue(greeting))
			return nil
		},
	}
	return cmd
}

// dump reads a string Value's content back as a Go string for display.
func dump(rt *alorert.Runtime, s alorert.Value) string {
	n := rt.StrLength(s)
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = rt.StrCharAt(s, i)
	}
	b := make([]rune, n)
	for i, u := range units {
		b[i] = rune(u)
	}
	return string(b)
}
