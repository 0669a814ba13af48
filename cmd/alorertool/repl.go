// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"golang.org/x/alorert"
)

// replCmd opens an interactive shell against a single live Runtime,
// the standalone analog of ogle's command loop: instead of stepping a
// remote inferior process, each line pokes directly at this process's
// own runtime instance.
func replCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Open an interactive shell against a live runtime instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := alorert.New(alorert.Config{Verbose: verbose})
			if err != nil {
				return err
			}
			th := rt.NewThread(256, 32)
			defer rt.DropThread(th)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "alorert> ",
				HistoryFile: "",
				Stdout:      cmd.OutOrStdout(),
				Stderr:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			s := newReplSession(rt, th)
			for {
				line, err := rl.Readline()
				if err == io.EOF || err == readline.ErrInterrupt {
					return nil
				}
				if err != nil {
					return err
				}
				if dispatch(rl.Stdout(), s, line) {
					return nil
				}
			}
		},
	}
	return cmd
}

// replSession is the REPL's mutable state across lines: the runtime, the
// thread every command runs on, and the named values the shell has handed
// out so later commands ("keep foo", "hash foo") can refer back to them.
type replSession struct {
	rt    *alorert.Runtime
	th    *alorert.Thread
	roots map[string]alorert.Value
}

func newReplSession(rt *alorert.Runtime, th *alorert.Thread) *replSession {
	return &replSession{rt: rt, th: th, roots: make(map[string]alorert.Value)}
}

// dispatch parses and executes one line of input, writing its response to
// out. It reports whether the session should end ("quit"/"exit"). Kept
// free of any readline dependency so it can be driven directly in tests.
func dispatch(out io.Writer, s *replSession, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "help":
		fmt.Fprintln(out, "commands: alloc <name> <size>, keep <name>, gc, stats, hash <name>, quit")

	case "alloc":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: alloc <name> <size>")
			return false
		}
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			fmt.Fprintf(out, "bad size: %v\n", err)
			return false
		}
		v, err := s.rt.Alloc(s.th, uintptr(size), alorert.KindNonPointer)
		if err != nil {
			fmt.Fprintf(out, "alloc failed: %v\n", err)
			return false
		}
		s.roots[fields[1]] = v
		fmt.Fprintf(out, "%s allocated\n", fields[1])

	case "keep":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: keep <name>")
			return false
		}
		v, ok := s.roots[fields[1]]
		if !ok {
			fmt.Fprintf(out, "no such value: %s\n", fields[1])
			return false
		}
		s.th.PushValue(v)
		fmt.Fprintf(out, "%s pushed to stack, now reachable across collections\n", fields[1])

	case "hash":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: hash <name>")
			return false
		}
		v, ok := s.roots[fields[1]]
		if !ok {
			fmt.Fprintf(out, "no such value: %s\n", fields[1])
			return false
		}
		fmt.Fprintf(out, "%#x\n", alorert.HashValue(v))

	case "gc":
		if err := s.rt.CollectAllGarbage(); err != nil {
			fmt.Fprintf(out, "collection failed: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "collection complete")

	case "stats":
		st := s.rt.Stats()
		fmt.Fprintf(out, "young=%d old=%d promoted=%d marked=%d swept=%d\n",
			st.YoungCollections, st.OldCollections, st.BytesPromoted, st.BytesMarked, st.BytesSwept)

	default:
		fmt.Fprintf(out, "unknown command %q, try \"help\"\n", fields[0])
	}
	return false
}
