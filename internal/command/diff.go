// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/jsonval"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/meta"
)

// stdinArg reads one side from stdin.
const stdinArg = "-"

// diffCommandAction is the action handler for the "diff" subcommand. With two
// arguments it compares two JSON documents; with one it re-renders a result
// saved by "call --output raw".
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", cmd.Args().Slice())

	config.Config.Namespace = "diff"

	var (
		result *dual.Result
		err    error
	)
	switch args := cmd.Args().Slice(); len(args) {
	case 1:
		result, err = readResult(args[0], stdin(m))
	case 2:
		result, err = readPair(args[0], args[1], stdin(m))
	default:
		return errors.New("diff takes REAL CLONE, or one saved result")
	}
	if err != nil {
		return err
	}

	return renderComparison(cmd, result, stdout(m))
}

// readPair reads the two bodies. At most one side may be stdin.
func readPair(realArg, cloneArg string, in io.Reader) (*dual.Result, error) {
	if realArg == stdinArg && cloneArg == stdinArg {
		return nil, errors.New("only one side can be read from stdin")
	}

	real, err := readBody(realArg, in)
	if err != nil {
		return nil, fmt.Errorf("real: %w", err)
	}
	clone, err := readBody(cloneArg, in)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	return &dual.Result{
		Real:  dual.Response{Body: real},
		Clone: dual.Response{Body: clone},
	}, nil
}

// readBody parses one document. An empty document is an absent body.
func readBody(arg string, in io.Reader) (jsonval.Value, error) {
	data, err := readInput(arg, in)
	if err != nil {
		return jsonval.Value{}, err
	}
	v, err := jsonval.Parse(data)
	if err != nil {
		return jsonval.Value{}, fmt.Errorf("%s: %w", arg, err)
	}
	return v, nil
}

// readResult decodes a saved dual result.
func readResult(arg string, in io.Reader) (*dual.Result, error) {
	data, err := readInput(arg, in)
	if err != nil {
		return nil, err
	}
	var r dual.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%s is not a saved result: %w", arg, err)
	}
	return &r, nil
}

func readInput(arg string, in io.Reader) ([]byte, error) {
	if arg == stdinArg {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return b, nil
}

// diffCommandBuilder constructs the cli.Command for "diff".
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare two saved responses without calling anything",
		UsageText: "apiparity diff REAL.json CLONE.json [options]\napiparity diff RESULT.json [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewGlobalFlags(),
		Action: diffCommandAction,
	}
}
