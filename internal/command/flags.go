// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

// Sides of a comparison, also the config keys beneath "backends".
const (
	sideReal  = "real"
	sideClone = "clone"
)

// NewGlobalFlags returns the flags shared by call and diff.
func NewGlobalFlags() (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "at",
			Usage: "compare only the subtree at this path, e.g. labels[0]",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.BoolFlag{
			Name:  "exit-code",
			Usage: "exit 1 when the responses differ",
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to differences",
		},
		&cli.StringSliceFlag{
			Name:  "ignore",
			Usage: "identifier fields excluded from comparison (\"none\" ignores nothing)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, delta, raw)",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, ComparisonOutputValidator)
			},
		},
	}

	return
}

// NewBackendFlags returns the per-side connection flags for call. Values
// come from the flag, then the environment, then the config file with the
// namespaced key first.
func NewBackendFlags(ns, cfgFile string) []cli.Flag {
	var flags []cli.Flag
	for _, side := range []string{sideReal, sideClone} {
		url := &cli.StringFlag{
			Name:    side,
			Usage:   "base URL of the " + side + " deployment",
			Sources: cli.EnvVars(envName(side, "URL")),
		}
		token := &cli.StringFlag{
			Name:    side + "-token",
			Usage:   "bearer token for the " + side + " deployment (\"?\" prompts)",
			Sources: cli.EnvVars(envName(side, "TOKEN")),
		}
		rate := &cli.FloatFlag{
			Name:    side + "-rate",
			Usage:   "requests per second against the " + side + " deployment (0 is unlimited)",
			Sources: cli.EnvVars(envName(side, "RATE")),
		}
		flags = append(flags,
			withConfigSources(ns, cfgFile, "backends."+side+".url", url),
			withConfigSources(ns, cfgFile, "backends."+side+".token", token),
			withConfigSources(ns, cfgFile, "backends."+side+".rate", rate),
		)
	}

	timeout := &cli.DurationFlag{
		Name:  "timeout",
		Usage: "per-request timeout",
		Value: 30 * time.Second,
	}

	return append(flags, withConfigSources(ns, cfgFile, "timeout", timeout))
}

// NewCatalogFlag constructs the --catalog flag, a local path or s3:// URL.
func NewCatalogFlag(ns, cfgFile string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "catalog",
		Usage:   "endpoint catalog, a local file or s3://bucket/key",
		Sources: cli.EnvVars("APIPARITY_CATALOG"),
	}
	return withConfigSources(ns, cfgFile, "catalog", flag)
}

// NewTableFlags returns the flags of the tabular commands.
func NewTableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml)",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "cell padding for text output",
			Value: 1,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}
}

// configSourced is any flag carrying a value source chain.
type configSourced interface {
	*cli.StringFlag | *cli.FloatFlag | *cli.DurationFlag
}

// withConfigSources appends the namespaced and global config file keys to
// flag's Sources chain. An empty path adds nothing.
func withConfigSources[F configSourced](ns, path, key string, flag F) F {
	if path == "" {
		return flag
	}
	chain := sourceChain(flag)
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(path)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(path)))
	return flag
}

func sourceChain(flag any) *cli.ValueSourceChain {
	switch f := flag.(type) {
	case *cli.StringFlag:
		return &f.Sources
	case *cli.FloatFlag:
		return &f.Sources
	case *cli.DurationFlag:
		return &f.Sources
	}
	return &cli.ValueSourceChain{}
}

// envName is the environment variable for a side's setting, e.g.
// APIPARITY_REAL_TOKEN.
func envName(side, what string) string {
	switch side {
	case sideReal:
		return "APIPARITY_REAL_" + what
	default:
		return "APIPARITY_CLONE_" + what
	}
}
