// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/apiparity/internal/attrs"
	"github.com/staranto/apiparity/internal/backend"
	"github.com/staranto/apiparity/internal/catalog"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/meta"
)

// ErrDivergent is returned by call and diff under --exit-code when the two
// responses differ. main maps it to exit status 1 without printing it.
var ErrDivergent = errors.New("responses differ")

// ignoreNone as the only --ignore value disables the ignore list.
const ignoreNone = "none"

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	return al, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// stdout, stderr and stdin fall back to the process streams.
func stdout(m meta.Meta) io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

func stderr(m meta.Meta) io.Writer {
	if m.Stderr != nil {
		return m.Stderr
	}
	return os.Stderr
}

func stdin(m meta.Meta) io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

// resolveIgnore returns the identifier fields to skip: --ignore, else the
// "ignore" config key, else differ.DefaultIgnore. "none" ignores nothing, and
// so does an empty list. A config value that is not a list is an error.
func resolveIgnore(cmd *cli.Command) ([]string, error) {
	fields := cmd.StringSlice("ignore")
	if !cmd.IsSet("ignore") {
		var err error
		fields, err = config.GetStringSlice("ignore", differ.DefaultIgnore)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore in %s: %w", config.Config.Source, err)
		}
	}

	out := []string{}
	for _, f := range fields {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 1 && out[0] == ignoreNone {
		return []string{}, nil
	}
	return out, nil
}

// newExecutor builds the two HTTP collaborators from the backend flags.
func newExecutor(cmd *cli.Command, m meta.Meta) (*dual.Executor, error) {
	var callers [2]*backend.Client
	for i, side := range []string{sideReal, sideClone} {
		url := cmd.String(side)
		if url == "" {
			return nil, fmt.Errorf("no %s base URL: set --%s, %s or backends.%s.url", side, side, envName(side, "URL"), side)
		}

		token, err := resolveToken(cmd, m, side)
		if err != nil {
			return nil, err
		}

		opts := []backend.Option{
			backend.WithToken(token),
			backend.WithTimeout(cmd.Duration("timeout")),
		}
		if rps := cmd.Float(side + "-rate"); rps > 0 {
			opts = append(opts, backend.WithRate(rps))
		}

		c, err := backend.New(side, os.ExpandEnv(url), opts...)
		if err != nil {
			return nil, err
		}
		callers[i] = c
	}

	log.Debugf("backends: real=%s clone=%s", callers[0].BaseURL, callers[1].BaseURL)
	return dual.New(callers[0], callers[1]), nil
}

// resolveToken returns the side's bearer token. "?" reads it from the
// terminal without echo.
func resolveToken(cmd *cli.Command, m meta.Meta, side string) (string, error) {
	token := os.ExpandEnv(cmd.String(side + "-token"))
	if token != "?" {
		return token, nil
	}

	in, ok := stdin(m).(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return "", fmt.Errorf("cannot prompt for the %s token: stdin is not a terminal", side)
	}

	fmt.Fprintf(stderr(m), "%s token: ", side)
	b, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(stderr(m))
	if err != nil {
		return "", fmt.Errorf("failed to read %s token: %w", side, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// loadCatalog loads --catalog.
func loadCatalog(ctx context.Context, cmd *cli.Command) (*catalog.Catalog, error) {
	source := os.ExpandEnv(cmd.String("catalog"))
	if source == "" {
		return nil, errors.New("no catalog: set --catalog, APIPARITY_CATALOG or catalog in the config file")
	}
	return catalog.Load(ctx, source)
}

// configFile is the loaded config file path, or "" when there is none.
func configFile(m meta.Meta) string {
	return m.Config.Source
}
