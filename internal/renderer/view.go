// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/jsonval"
)

// Node is one key or value of a rendered body. Containers carry Children in
// document order; an empty container has none. Key is set on object members
// only and may point at an empty string.
type Node struct {
	Key      *string        `json:"key,omitempty" yaml:"key,omitempty"`
	Index    *int           `json:"index,omitempty" yaml:"index,omitempty"`
	Path     string         `json:"path" yaml:"path"`
	Kind     string         `json:"kind" yaml:"kind"`
	Value    *jsonval.Value `json:"value,omitempty" yaml:"value,omitempty"`
	Class    Class          `json:"class" yaml:"class"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsContainer reports whether n is an object or array.
func (n *Node) IsContainer() bool {
	return n.Kind == jsonval.Object.String() || n.Kind == jsonval.Array.String()
}

// SideView is one side's request and response.
type SideView struct {
	Side         Side         `json:"side" yaml:"side"`
	Label        string       `json:"label" yaml:"label"`
	Request      dual.Request `json:"request" yaml:"request"`
	Status       *int         `json:"status" yaml:"status"`
	Error        *string      `json:"error" yaml:"error"`
	ResponseTime int64        `json:"responseTime" yaml:"responseTime"`
	Size         int          `json:"size" yaml:"size"`
	Body         *Node        `json:"body" yaml:"body"`
}

// SummaryLine is one formatted record.
type SummaryLine struct {
	Path    string          `json:"path" yaml:"path"`
	Type    differ.DiffType `json:"type" yaml:"type"`
	Message string          `json:"message" yaml:"message"`
}

// SummaryGroup holds the records of one severity.
type SummaryGroup struct {
	Severity differ.Severity `json:"severity" yaml:"severity"`
	Lines    []SummaryLine   `json:"lines" yaml:"lines"`
}

// Summary is the verdict plus every record grouped by severity, most severe
// first. Empty groups are left out.
type Summary struct {
	Match   bool           `json:"match" yaml:"match"`
	Verdict string         `json:"verdict" yaml:"verdict"`
	Count   int            `json:"count" yaml:"count"`
	Groups  []SummaryGroup `json:"groups" yaml:"groups"`
}

// View is the complete comparison: summary, real side, separator, clone
// side.
type View struct {
	Summary   Summary  `json:"summary" yaml:"summary"`
	Real      SideView `json:"real" yaml:"real"`
	Separator string   `json:"-" yaml:"-"`
	Clone     SideView `json:"clone" yaml:"clone"`
}

// Option adjusts RenderComparisonView.
type Option func(*viewOptions)

type viewOptions struct {
	request dual.Request
	ignore  []string
}

// WithRequest records the request both sides answered.
func WithRequest(req dual.Request) Option {
	return func(o *viewOptions) { o.request = req }
}

// WithIgnore sets the identifier fields reported as ignored.
func WithIgnore(ignore []string) Option {
	return func(o *viewOptions) { o.ignore = ignore }
}

// Separator sits between the two side panels.
const Separator = "────────────────────────────────────────"

// RenderComparisonView builds the view. It never fails: absent bodies render
// as nil nodes and the two sides are walked independently.
func RenderComparisonView(real, clone dual.Response, diff *differ.Result, opts ...Option) *View {
	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}
	if diff == nil {
		diff = differ.NewResult(nil)
	}

	cls := NewClassifier(diff, o.ignore)

	v := &View{
		Summary:   summarize(diff),
		Real:      sideView(SideReal, "Real", o.request, real, cls),
		Separator: Separator,
		Clone:     sideView(SideClone, "Clone", o.request, clone, cls),
	}

	log.Debugf("view: %d summary group(s)", len(v.Summary.Groups))
	return v
}

func summarize(diff *differ.Result) Summary {
	s := Summary{
		Match: !diff.HasDifferences,
		Count: diff.Summary.Count,
	}
	if s.Match {
		s.Verdict = "Responses match"
	} else {
		s.Verdict = fmt.Sprintf("Responses differ: %d difference(s)", s.Count)
	}

	groups := diff.BySeverity()
	for _, sev := range differ.Severities {
		recs := groups[sev]
		if len(recs) == 0 {
			continue
		}
		g := SummaryGroup{Severity: sev}
		for _, rec := range recs {
			g.Lines = append(g.Lines, SummaryLine{
				Path:    rec.Path,
				Type:    rec.Type,
				Message: FormatRecord(rec),
			})
		}
		s.Groups = append(s.Groups, g)
	}
	return s
}

func sideView(side Side, label string, req dual.Request, resp dual.Response, cls *Classifier) SideView {
	sv := SideView{
		Side:         side,
		Label:        label,
		Request:      req,
		Status:       resp.Status,
		Error:        resp.Error,
		ResponseTime: resp.ResponseTime,
	}
	if resp.Body.Kind() != jsonval.Undefined {
		sv.Size = len(resp.Body.String())
		sv.Body = BuildTree(resp.Body, side, cls)
	}
	return sv
}

// BuildTree walks body and classifies every node for side.
func BuildTree(body jsonval.Value, side Side, cls *Classifier) *Node {
	if body.Kind() == jsonval.Undefined {
		return nil
	}
	return build(body, "", side, cls)
}

func build(v jsonval.Value, path string, side Side, cls *Classifier) *Node {
	n := &Node{
		Path:  path,
		Kind:  v.Kind().String(),
		Class: cls.Classify(path, side),
	}
	if n.Path == "" {
		n.Path = differ.RootPath
	}

	switch v.Kind() {
	case jsonval.Object:
		for _, m := range v.Members() {
			childPath := m.Key
			if path != "" {
				childPath = path + "." + m.Key
			}
			child := build(m.Value, childPath, side, cls)
			key := m.Key
			child.Key = &key
			n.Children = append(n.Children, child)
		}
	case jsonval.Array:
		for i, item := range v.Items() {
			child := build(item, fmt.Sprintf("%s[%d]", path, i), side, cls)
			idx := i
			child.Index = &idx
			n.Children = append(n.Children, child)
		}
	default:
		leaf := v
		n.Value = &leaf
	}
	return n
}
