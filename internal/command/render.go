// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/driller"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/filters"
	"github.com/staranto/apiparity/internal/log"
	"github.com/staranto/apiparity/internal/output"
	"github.com/staranto/apiparity/internal/renderer"
)

// comparisonDocument is what --output json and yaml emit.
type comparisonDocument struct {
	Diff *differ.Result `json:"diff" yaml:"diff"`
	View *renderer.View `json:"view" yaml:"view"`
}

// renderComparison narrows, diffs, filters and writes result in the format
// chosen by --output. It returns ErrDivergent under --exit-code when
// differences remain after filtering.
func renderComparison(cmd *cli.Command, result *dual.Result, w io.Writer) error {
	format := cmd.String("output")

	ignore, err := resolveIgnore(cmd)
	if err != nil {
		return err
	}

	if format == outputRaw {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return divergence(cmd, result.Diff(differ.WithIgnore(ignore...)))
	}

	real, clone := result.Real, result.Clone
	if at := cmd.String("at"); at != "" {
		if real.Body, err = driller.Drill(real.Body, at); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		if clone.Body, err = driller.Drill(clone.Body, at); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		log.Debugf("narrowed both bodies to %s", at)
	}

	diff := differ.GenerateDiff(real.Body, clone.Body, differ.WithIgnore(ignore...))
	diff = filters.Apply(diff, cmd.String("filter"))

	switch format {
	case outputDelta:
		text, modified, err := differ.Delta(real.Body, clone.Body, cmd.Bool("color"), ignore...)
		if err != nil {
			return fmt.Errorf("failed to format delta: %w", err)
		}
		if !modified {
			text = "The responses are identical.\n"
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}

	default:
		view := renderer.RenderComparisonView(real, clone, diff,
			renderer.WithRequest(result.Request),
			renderer.WithIgnore(ignore),
		)

		switch format {
		case outputJSON, outputYAML:
			if err := output.Emit(w, format, comparisonDocument{Diff: diff, View: view}); err != nil {
				return err
			}
		default:
			styles := renderer.PlainStyles()
			if cmd.Bool("color") {
				styles = renderer.ColorStyles(output.ColorResolver())
			}
			if err := renderer.Text(w, view, styles); err != nil {
				return err
			}
		}
	}

	return divergence(cmd, diff)
}

func divergence(cmd *cli.Command, diff *differ.Result) error {
	if cmd.Bool("exit-code") && diff != nil && diff.HasDifferences {
		return ErrDivergent
	}
	return nil
}
