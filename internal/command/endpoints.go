// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/catalog"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/meta"
	"github.com/staranto/apiparity/internal/output"
)

// endpointsDefaultAttrs are the columns shown without --attrs.
var endpointsDefaultAttrs = []string{"name", "method", "path", "params"}

// endpointsCommandAction is the action handler for the "endpoints"
// subcommand. It lists the catalog.
func endpointsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", cmd.Args().Slice())

	config.Config.Namespace = "endpoints"

	cat, err := loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	al, err := BuildAttrs(cmd, endpointsDefaultAttrs...)
	if err != nil {
		return err
	}

	sortSpec := cmd.String("sort")
	if sortSpec == "" {
		sortSpec = "name"
	}

	opts := output.Options{
		Output: cmd.String("output"),
		Sort:   sortSpec,
		Table: output.TableOptions{
			Color:   cmd.Bool("color"),
			Titles:  cmd.Bool("titles"),
			Padding: cmd.Int("padding"),
			Footer:  cat.Source,
		},
	}

	return output.SliceDiceSpit(endpointRows(cat), al, opts, stdout(m))
}

// endpointRows flattens the catalog into one row per endpoint.
func endpointRows(cat *catalog.Catalog) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(cat.Endpoints))
	for _, e := range cat.Endpoints {
		var params, required []string
		for _, p := range e.Params {
			params = append(params, p.Name)
			if p.Required {
				required = append(required, p.Name)
			}
		}
		rows = append(rows, map[string]interface{}{
			"name":     e.Name,
			"method":   e.Method,
			"path":     e.Path,
			"docs":     e.Docs,
			"params":   strings.Join(params, ","),
			"required": strings.Join(required, ","),
		})
	}
	return rows
}

// endpointsCommandBuilder constructs the cli.Command for "endpoints".
func endpointsCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "endpoints",
		Usage:     "list the endpoint catalog",
		UsageText: "apiparity endpoints [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  append([]cli.Flag{NewCatalogFlag("endpoints", configFile(meta))}, NewTableFlags()...),
		Action: endpointsCommandAction,
	}
}
