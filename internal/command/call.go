// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/cacheutil"
	"github.com/staranto/apiparity/internal/catalog"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/meta"
)

// callCommandAction is the action handler for the "call" subcommand. It sends
// the request to both deployments at once, stores the pair and renders the
// comparison.
func callCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", cmd.Args().Slice())

	config.Config.Namespace = "call"

	ep, values, err := resolveEndpoint(ctx, cmd, m)
	if err != nil {
		return err
	}

	path, query, body, err := ep.Split(values)
	if err != nil {
		return fmt.Errorf("%s: %w", ep.Name, err)
	}

	req := dual.Request{
		Endpoint:    ep.Path,
		Method:      ep.Method,
		PathParams:  path,
		QueryParams: query,
		BodyParams:  body,
	}
	scope := backendScope(cmd)

	var result *dual.Result
	if cmd.Bool("cached") {
		result, err = loadStored(m.Store, scope, req)
	} else {
		result, err = executeAndStore(ctx, cmd, m, scope, req)
	}
	if err != nil {
		return err
	}

	return renderComparison(cmd, result, stdout(m))
}

// resolveEndpoint picks the endpoint from the first argument, which is a
// catalog name or a path beginning with "/", and gathers name=value params
// from --param and the remaining arguments. Without an endpoint argument the
// picker runs when attached to a terminal.
func resolveEndpoint(ctx context.Context, cmd *cli.Command, m meta.Meta) (catalog.Endpoint, map[string]string, error) {
	args := cmd.Args().Slice()

	var name string
	if len(args) > 0 && !strings.Contains(args[0], "=") {
		name, args = args[0], args[1:]
	}

	values, err := catalog.ParseAssignments(append(cmd.StringSlice("param"), args...))
	if err != nil {
		return catalog.Endpoint{}, nil, err
	}

	if strings.HasPrefix(name, "/") {
		return catalog.AdHoc(cmd.String("method"), name), values, nil
	}

	cat, err := loadCatalog(ctx, cmd)
	if err != nil {
		return catalog.Endpoint{}, nil, err
	}

	if name == "" {
		if !canPick(stdin(m), stdout(m)) {
			return catalog.Endpoint{}, nil, errors.New("no endpoint given: pass a catalog name or a path beginning with /")
		}
		if name, err = pickEndpoint(cat.Names(), stdin(m), stdout(m)); err != nil {
			return catalog.Endpoint{}, nil, err
		}
	}

	ep, ok := cat.Lookup(name)
	if !ok {
		return catalog.Endpoint{}, nil, fmt.Errorf("unknown endpoint %q in %s (see apiparity endpoints)", name, cat.Source)
	}
	return ep, values, nil
}

// backendScope identifies the deployment pair in stored result keys.
func backendScope(cmd *cli.Command) string {
	return os.ExpandEnv(cmd.String(sideReal)) + " " + os.ExpandEnv(cmd.String(sideClone))
}

func executeAndStore(ctx context.Context, cmd *cli.Command, m meta.Meta, scope string, req dual.Request) (*dual.Result, error) {
	hours, err := config.GetInt("cache.clean", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid cache.clean in %s: %w", config.Config.Source, err)
	}

	executor, err := newExecutor(cmd, m)
	if err != nil {
		return nil, err
	}

	result, err := executor.ExecuteDual(ctx, req.Endpoint, req.Method, req.PathParams, req.QueryParams, req.BodyParams)
	if err != nil {
		return nil, err
	}

	if err := m.Store.SaveResult(scope, result); err != nil {
		log.WithError(err).Warnf("result not stored")
	}

	if err := m.Store.Purge(hours); err != nil {
		log.WithError(err).Warnf("store not purged")
	}

	return result, nil
}

func loadStored(store *cacheutil.Store, scope string, req dual.Request) (*dual.Result, error) {
	if !store.Enabled() {
		return nil, errors.New("--cached needs the response store, which is disabled (APIPARITY_CACHE)")
	}
	result, ok, err := store.LoadResult(scope, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no stored result for %s %s: run without --cached first", req.Method, req.Endpoint)
	}
	log.Debugf("replaying stored result for %s %s", req.Method, req.Endpoint)
	return result, nil
}

// callCommandBuilder constructs the cli.Command for "call".
func callCommandBuilder(meta meta.Meta) *cli.Command {
	cfgFile := configFile(meta)
	return &cli.Command{
		Name:      "call",
		Usage:     "send one request to both deployments and compare the responses",
		UsageText: "apiparity call [ENDPOINT|/path] [name=value ...] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "replay the last stored result instead of calling the deployments",
				Value: false,
			},
			NewCatalogFlag("call", cfgFile),
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"X"},
				Usage:   "HTTP method for a /path endpoint",
				Value:   "GET",
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "request parameter as name=value (repeatable)",
			},
		}, NewBackendFlags("call", cfgFile)...), NewGlobalFlags()...),
		Action: callCommandAction,
	}
}
