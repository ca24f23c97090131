// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"fmt"
	"image/color"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/staranto/apiparity/internal/differ"
)

// Styles paints the text view. With Enabled false nothing is styled and a
// marker column carries the classification instead.
type Styles struct {
	Enabled  bool
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Match    lipgloss.Style
	Mismatch lipgloss.Style
	Ignored  lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
}

// PlainStyles is the uncolored style set.
func PlainStyles() Styles {
	return Styles{}
}

// ColorStyles builds the colored style set. resolve returns the configured
// color for a key, or the light/dark default for the terminal background.
func ColorStyles(resolve func(key, light, dark string) color.Color) Styles {
	fg := func(key, light, dark string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(resolve(key, light, dark))
	}
	return Styles{
		Enabled:  true,
		Title:    fg("colors.title", "#b08800", "#f6be00").Bold(true),
		Muted:    fg("colors.muted", "#666666", "#8a8a8a"),
		Match:    fg("colors.match", "#1a7f37", "#3fb950"),
		Mismatch: fg("colors.mismatch", "#cf222e", "#ff7b72").Bold(true),
		Ignored:  fg("colors.ignored", "#8c959f", "#6e7681").Faint(true),
		High:     fg("colors.high", "#cf222e", "#ff7b72").Bold(true),
		Medium:   fg("colors.medium", "#9a6700", "#d29922"),
	}
}

func (s Styles) paint(st lipgloss.Style, text string) string {
	if !s.Enabled {
		return text
	}
	return st.Render(text)
}

func (s Styles) class(c Class, text string) string {
	if !s.Enabled {
		return marker(c) + text
	}
	switch c {
	case Match:
		return s.Match.Render(text)
	case Mismatch:
		return s.Mismatch.Render(text)
	case Ignored:
		return s.Ignored.Render(text)
	default:
		return text
	}
}

func marker(c Class) string {
	switch c {
	case Mismatch:
		return "! "
	case Ignored:
		return "~ "
	default:
		return "  "
	}
}

// Text writes v for a terminal.
func Text(w io.Writer, v *View, st Styles) error {
	var b strings.Builder

	writeSummary(&b, v.Summary, st)
	b.WriteString("\n")
	writeSide(&b, v.Real, st)
	b.WriteString(st.paint(st.Muted, v.Separator))
	b.WriteString("\n")
	writeSide(&b, v.Clone, st)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(b *strings.Builder, s Summary, st Styles) {
	verdict := st.paint(st.Match, s.Verdict)
	if !s.Match {
		verdict = st.paint(st.Mismatch, s.Verdict)
	}
	b.WriteString(verdict)
	b.WriteString("\n")

	for _, g := range s.Groups {
		sevStyle := st.Muted
		switch g.Severity {
		case differ.SeverityHigh:
			sevStyle = st.High
		case differ.SeverityMedium:
			sevStyle = st.Medium
		}
		fmt.Fprintf(b, "  %s\n", st.paint(sevStyle, strings.ToUpper(string(g.Severity))))
		for _, l := range g.Lines {
			fmt.Fprintf(b, "    %s  %s\n", st.paint(st.Muted, string(l.Type)), l.Message)
		}
	}
}

func writeSide(b *strings.Builder, sv SideView, st Styles) {
	header := []string{st.paint(st.Title, sv.Label)}
	if sv.Request.Method != "" || sv.Request.Endpoint != "" {
		header = append(header, strings.TrimSpace(sv.Request.Method+" "+sv.Request.Endpoint))
	}

	var facts []string
	switch {
	case sv.Error != nil:
		facts = append(facts, "error: "+*sv.Error)
	case sv.Status != nil:
		facts = append(facts, strings.TrimSpace(fmt.Sprintf("%d %s", *sv.Status, http.StatusText(*sv.Status))))
	}
	facts = append(facts, humanize.Comma(sv.ResponseTime)+" ms")
	if sv.Size > 0 {
		facts = append(facts, humanize.Bytes(uint64(sv.Size)))
	}
	header = append(header, st.paint(st.Muted, strings.Join(facts, " · ")))

	b.WriteString(strings.Join(header, "  "))
	b.WriteString("\n")

	if sv.Body == nil {
		b.WriteString(st.paint(st.Muted, "(no body)"))
		b.WriteString("\n")
		return
	}
	writeNode(b, sv.Body, 0, true, st)
}

func writeNode(b *strings.Builder, n *Node, depth int, last bool, st Styles) {
	indent := strings.Repeat("  ", depth)
	comma := ","
	if last {
		comma = ""
	}

	label := ""
	if n.Key != nil {
		label = fmt.Sprintf("%q: ", *n.Key)
	}

	if !n.IsContainer() {
		b.WriteString(indent + st.class(n.Class, label+n.Value.String()) + comma + "\n")
		return
	}

	open, closing := "{", "}"
	if n.Kind == "array" {
		open, closing = "[", "]"
	}

	if len(n.Children) == 0 {
		b.WriteString(indent + st.class(n.Class, label+open+closing) + comma + "\n")
		return
	}

	b.WriteString(indent + st.class(n.Class, label+open) + "\n")
	for i, child := range n.Children {
		writeNode(b, child, depth+1, i == len(n.Children)-1, st)
	}
	b.WriteString(indent + st.class(n.Class, closing) + comma + "\n")
}
