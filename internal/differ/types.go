// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"

	"github.com/staranto/apiparity/internal/jsonval"
)

// DiffType classifies a single divergence.
type DiffType string

const (
	TypeMismatch        DiffType = "type_mismatch"
	ValueMismatch       DiffType = "value_mismatch"
	MissingInReal       DiffType = "missing_in_real"
	MissingInClone      DiffType = "missing_in_clone"
	ArrayLengthMismatch DiffType = "array_length_mismatch"
	// MissingResponse is only ever emitted at the root, when exactly one side
	// has no body at all.
	MissingResponse DiffType = "missing_response"
)

// Severity ranks a record. Low is reserved; no rule emits it.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Severities lists severities from most to least severe.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// RootPath addresses the document root in records.
const RootPath = "<root>"

// DefaultIgnore holds identifier fields whose values legitimately differ
// between deployments.
var DefaultIgnore = []string{
	"id",
	"labelId",
	"threadId",
	"messageId",
	"historyId",
	"internalDate",
	"sizeEstimate",
}

// Record is one divergence at a path. Real and Clone are Undefined when the
// value is absent on that side.
type Record struct {
	Path     string        `json:"path" yaml:"path"`
	Type     DiffType      `json:"type" yaml:"type"`
	Real     jsonval.Value `json:"real" yaml:"real,omitempty"`
	Clone    jsonval.Value `json:"clone" yaml:"clone,omitempty"`
	Severity Severity      `json:"severity" yaml:"severity"`
	Message  string        `json:"message" yaml:"message"`
}

// MarshalJSON omits absent sides rather than rendering them as null, so a
// JSON null body and a missing body stay distinguishable.
func (r Record) MarshalJSON() ([]byte, error) {
	type side = *jsonval.Value
	out := struct {
		Path     string   `json:"path"`
		Type     DiffType `json:"type"`
		Real     side     `json:"real,omitempty"`
		Clone    side     `json:"clone,omitempty"`
		Severity Severity `json:"severity"`
		Message  string   `json:"message"`
	}{
		Path:     r.Path,
		Type:     r.Type,
		Severity: r.Severity,
		Message:  r.Message,
	}
	if r.Real.Kind() != jsonval.Undefined {
		out.Real = &r.Real
	}
	if r.Clone.Kind() != jsonval.Undefined {
		out.Clone = &r.Clone
	}
	return json.Marshal(out)
}

// Summary is a compact projection of the records.
type Summary struct {
	Count int      `json:"count" yaml:"count"`
	Paths []string `json:"paths" yaml:"paths"`
}

// Result is the outcome of one GenerateDiff call.
type Result struct {
	HasDifferences bool     `json:"hasDifferences" yaml:"hasDifferences"`
	Summary        Summary  `json:"summary" yaml:"summary"`
	Details        []Record `json:"details" yaml:"details"`
}

// NewResult derives HasDifferences and Summary from details.
func NewResult(details []Record) *Result {
	paths := make([]string, 0, len(details))
	for _, d := range details {
		paths = append(paths, d.Path)
	}
	if details == nil {
		details = []Record{}
	}
	return &Result{
		HasDifferences: len(details) > 0,
		Summary: Summary{
			Count: len(details),
			Paths: paths,
		},
		Details: details,
	}
}

// Find returns the first record at exactly path.
func (r *Result) Find(path string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	for _, d := range r.Details {
		if d.Path == path {
			return d, true
		}
	}
	return Record{}, false
}

// BySeverity groups records by severity, preserving record order inside each
// group.
func (r *Result) BySeverity() map[Severity][]Record {
	groups := make(map[Severity][]Record)
	if r == nil {
		return groups
	}
	for _, d := range r.Details {
		groups[d.Severity] = append(groups[d.Severity], d)
	}
	return groups
}
