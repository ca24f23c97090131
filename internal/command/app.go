// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/cacheutil"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the apiparity
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Debugf("no config file: %v", err)
	}
	config.Config.Namespace = ns
	cfg.Namespace = ns

	return NewApp(meta.Meta{
		Args:    args,
		Config:  cfg,
		Context: ctx,
		Store:   cacheutil.NewStore(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}), nil
}

// NewApp assembles the command tree around m.
func NewApp(m meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:      "apiparity",
		Usage:     "compare a real API with its clone, one request at a time",
		Writer:    stdout(m),
		ErrWriter: stderr(m),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "apiparity version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		callCommandBuilder(m),
		diffCommandBuilder(m),
		endpointsCommandBuilder(m),
		completionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
