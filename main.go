// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/staranto/apiparity/internal/command"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/version"
)

var ctx = context.Background()

// boolFlags never take a separate value argument.
var boolFlags = []string{
	"--cached", "--color", "-c", "--exit-code", "--help", "-h", "--titles", "-t", "--version", "-v",
}

// repeatableFlags accumulate and are never deduplicated.
var repeatableFlags = []string{"--ignore", "--param", "-p"}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	args = deduplicateFlags(args)
	log.Debugf("args after dedup: args=%v", args)
	return args
}

// processSetOnly expands an argument set from the config file. An explicit
// @name argument is replaced by the entries of "<command>.name"; without one
// the "<command>.defaults" entries are inserted ahead of the user's own
// arguments so the user's flags win.
func processSetOnly(args []string) []string {
	if len(args) < 2 {
		return args
	}

	idx := 2
	set := "defaults"
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			idx += i
			args = append(args[:idx:idx], args[idx+1:]...)
			break
		}
	}

	entries, _ := config.GetStringSlice(args[1] + "." + set)
	return injectConfigSet(args, entries, idx)
}

// injectConfigSet splits each entry on whitespace and inserts the fields at
// insertIdx.
func injectConfigSet(args []string, entries []string, insertIdx int) []string {
	if len(entries) == 0 {
		return args
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:insertIdx]...)
	out = append(out, expanded...)
	return append(out, args[insertIdx:]...)
}

// deduplicateFlags keeps only the last occurrence of each flag after the
// command so config-supplied defaults can be overridden. Repeatable flags and
// positional arguments are left alone. Everything after "--" is untouched.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type item struct {
		key    string
		tokens []string
	}

	var items []item
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			items = append(items, item{tokens: rest[i:]})
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			items = append(items, item{tokens: []string{a}})
			continue
		}

		key, _, hasValue := strings.Cut(a, "=")
		it := item{key: key, tokens: []string{a}}
		if !hasValue && !slices.Contains(boolFlags, key) && i+1 < len(rest) {
			if next := rest[i+1]; !strings.HasPrefix(next, "-") || next == "-" {
				it.tokens = append(it.tokens, next)
				i++
			}
		}
		items = append(items, it)
	}

	last := map[string]int{}
	for i, it := range items {
		if it.key != "" && !slices.Contains(repeatableFlags, it.key) {
			last[it.key] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, it := range items {
		if it.key != "" {
			if l, ok := last[it.key]; ok && l != i {
				continue
			}
		}
		out = append(out, it.tokens...)
	}
	return out
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, command.ErrDivergent) {
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}
