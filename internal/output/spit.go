// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v2"

	"github.com/staranto/apiparity/internal/attrs"
	"github.com/staranto/apiparity/internal/config"
)

// TableOptions controls TableWriter.
type TableOptions struct {
	Color   bool
	Titles  bool
	Padding int
	Header  string
	Footer  string
}

// Options controls SliceDiceSpit.
type Options struct {
	// Output is text, json or yaml.
	Output string
	// Sort is a SortDataset spec.
	Sort  string
	Table TableOptions
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// SliceDiceSpit transforms, sorts and renders rows. Text output is a table of
// the included attrs; json and yaml emit the rows keyed by OutputKey.
func SliceDiceSpit(rows []map[string]interface{}, list attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if err := list.SetGlobalTransformSpec(); err != nil {
		return err
	}

	shaped := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out := make(map[string]interface{}, len(list))
		for i := range list {
			attr := &list[i]
			if attr.Key == "*" {
				continue
			}
			out[attr.OutputKey] = attr.Transform(row[attr.Key])
		}
		shaped = append(shaped, out)
	}

	SortDataset(shaped, opts.Sort)

	switch opts.Output {
	case "json", "yaml":
		visible := make([]map[string]interface{}, 0, len(shaped))
		for _, row := range shaped {
			out := make(map[string]interface{})
			for _, attr := range list.Included() {
				out[attr.OutputKey] = row[attr.OutputKey]
			}
			visible = append(visible, out)
		}
		return Emit(w, opts.Output, visible)
	default:
		TableWriter(shaped, list, opts.Table, w)
		return nil
	}
}

// Emit writes v as indented JSON or as YAML.
func Emit(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options. If w is nil, os.Stdout is used.
func TableWriter(resultSet []map[string]interface{}, list attrs.AttrList, opts TableOptions, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	visible := list.Included()

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(visible))
		for _, attr := range visible {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	pad := opts.Padding
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		headers := make([]string, 0, len(visible))
		for _, attr := range visible {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)

	if opts.Footer != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Footer))
	}
}

// ColorResolver returns a resolver for configured colors. A key found in the
// config wins; otherwise the light or dark default is picked for the
// terminal background, which is probed once.
func ColorResolver() func(key, light, dark string) color.Color {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	log.Debugf("dark background: %v", isDark)

	return func(key, light, dark string) color.Color {
		if colorCfg, err := config.GetString(key); err == nil && colorCfg != "" {
			return lipgloss.Color(colorCfg)
		}
		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header, even, odd color.Color) {
	resolve := ColorResolver()

	header = resolve(key+".title", "#b08800", "#f6be00")
	even = resolve(key+".even", "#333333", "#ffffff")
	odd = resolve(key+".odd", "#0088a0", "#00c8f0")

	return
}
