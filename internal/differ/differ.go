// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/apiparity/internal/jsonval"
)

// Option adjusts a single GenerateDiff call.
type Option func(*options)

type options struct {
	ignore []string
}

// WithIgnore replaces the ignore list. WithIgnore() with no fields ignores
// nothing.
func WithIgnore(fields ...string) Option {
	return func(o *options) {
		o.ignore = append([]string{}, fields...)
	}
}

// GenerateDiff compares the real and clone bodies. Both absent yields no
// differences, exactly one absent yields a single missing_response record at
// the root, anything else is walked recursively. The ignore list defaults to
// DefaultIgnore.
func GenerateDiff(real, clone jsonval.Value, opts ...Option) *Result {
	o := options{ignore: DefaultIgnore}
	for _, opt := range opts {
		opt(&o)
	}

	var details []Record
	switch {
	case real.IsAbsent() && clone.IsAbsent():
	case real.IsAbsent():
		details = []Record{missingResponse(real, clone, "Real")}
	case clone.IsAbsent():
		details = []Record{missingResponse(real, clone, "Clone")}
	default:
		m := NewIgnoreMatcher(o.ignore)
		details = m.compareObjects(real, clone, "")
	}

	log.Debugf("diff: %d record(s)", len(details))
	return NewResult(details)
}

// GenerateDiffBytes parses both documents and diffs them. Empty input is an
// absent body.
func GenerateDiffBytes(real, clone []byte, opts ...Option) (*Result, error) {
	r, err := jsonval.Parse(real)
	if err != nil {
		return nil, fmt.Errorf("failed to parse real body: %w", err)
	}
	c, err := jsonval.Parse(clone)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clone body: %w", err)
	}
	return GenerateDiff(r, c, opts...), nil
}

func missingResponse(real, clone jsonval.Value, side string) Record {
	return Record{
		Path:     RootPath,
		Type:     MissingResponse,
		Real:     real,
		Clone:    clone,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("%s response is missing", side),
	}
}

// ShouldIgnoreField reports whether the field at fullPath, whose own key is
// fieldName, is excluded by the ignore list.
func ShouldIgnoreField(fullPath, fieldName string, ignore []string) bool {
	return NewIgnoreMatcher(ignore).Match(fullPath, fieldName)
}

// IgnoreMatcher is an ignore list compiled for repeated lookups.
type IgnoreMatcher struct {
	literal  map[string]struct{}
	patterns []*regexp.Regexp
}

// NewIgnoreMatcher compiles ignore. Entries containing * become anchored
// patterns where * matches any run of characters; all other characters match
// literally.
func NewIgnoreMatcher(ignore []string) *IgnoreMatcher {
	m := &IgnoreMatcher{literal: make(map[string]struct{}, len(ignore))}
	for _, entry := range ignore {
		m.literal[entry] = struct{}{}
		if !strings.Contains(entry, "*") {
			continue
		}
		expr := strings.ReplaceAll(regexp.QuoteMeta(entry), `\*`, ".*")
		m.patterns = append(m.patterns, regexp.MustCompile("^"+expr+"$"))
	}
	return m
}

// Match reports whether fieldName is listed, fullPath is listed, or fullPath
// matches a pattern.
func (m *IgnoreMatcher) Match(fullPath, fieldName string) bool {
	if _, ok := m.literal[fieldName]; ok {
		return true
	}
	if _, ok := m.literal[fullPath]; ok {
		return true
	}
	for _, re := range m.patterns {
		if re.MatchString(fullPath) {
			return true
		}
	}
	return false
}

func displayPath(path string) string {
	if path == "" {
		return RootPath
	}
	return path
}

func (m *IgnoreMatcher) compareObjects(real, clone jsonval.Value, path string) []Record {
	if real.Kind() != clone.Kind() {
		return []Record{{
			Path:     displayPath(path),
			Type:     TypeMismatch,
			Real:     real,
			Clone:    clone,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Type mismatch: real is %s, clone is %s", real.Kind(), clone.Kind()),
		}}
	}

	switch real.Kind() {
	case jsonval.Array:
		return m.compareArrays(real, clone, path)
	case jsonval.Object:
		return m.compareMembers(real, clone, path)
	}

	if real.PrimitiveEqual(clone) {
		return nil
	}
	return []Record{{
		Path:     displayPath(path),
		Type:     ValueMismatch,
		Real:     real,
		Clone:    clone,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Value mismatch: real=%s, clone=%s", real, clone),
	}}
}

func (m *IgnoreMatcher) compareMembers(real, clone jsonval.Value, path string) []Record {
	keys := real.Keys()
	for _, k := range clone.Keys() {
		if !real.Has(k) {
			keys = append(keys, k)
		}
	}

	var out []Record
	for _, key := range keys {
		currentPath := key
		if path != "" {
			currentPath = path + "." + key
		}
		if m.Match(currentPath, key) {
			continue
		}

		rv, inReal := real.Get(key)
		cv, inClone := clone.Get(key)
		switch {
		case !inReal:
			out = append(out, Record{
				Path:     currentPath,
				Type:     MissingInReal,
				Clone:    cv,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Missing in real: %s", currentPath),
			})
		case !inClone:
			out = append(out, Record{
				Path:     currentPath,
				Type:     MissingInClone,
				Real:     rv,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Missing in clone: %s", currentPath),
			})
		default:
			out = append(out, m.compareObjects(rv, cv, currentPath)...)
		}
	}
	return out
}

// compareArrays records a length mismatch at path+".length" (".length" for a
// root array) and compares elements by index.
func (m *IgnoreMatcher) compareArrays(real, clone jsonval.Value, path string) []Record {
	var out []Record

	rl, cl := real.Len(), clone.Len()
	if rl != cl {
		out = append(out, Record{
			Path:     path + ".length",
			Type:     ArrayLengthMismatch,
			Real:     jsonval.NewNumber(float64(rl)),
			Clone:    jsonval.NewNumber(float64(cl)),
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Array length mismatch: real has %d items, clone has %d", rl, cl),
		})
	}

	for i := 0; i < max(rl, cl); i++ {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case i >= rl:
			out = append(out, Record{
				Path:     itemPath,
				Type:     MissingInReal,
				Clone:    clone.Index(i),
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Missing in real: %s", itemPath),
			})
		case i >= cl:
			out = append(out, Record{
				Path:     itemPath,
				Type:     MissingInClone,
				Real:     real.Index(i),
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Missing in clone: %s", itemPath),
			})
		default:
			out = append(out, m.compareObjects(real.Index(i), clone.Index(i), itemPath)...)
		}
	}
	return out
}
