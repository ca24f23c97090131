// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"strings"

	"github.com/staranto/apiparity/internal/differ"
)

// Class is the classification of one rendered node.
type Class string

const (
	Match    Class = "match"
	Mismatch Class = "mismatch"
	Ignored  Class = "ignored"
	None     Class = "none"
)

// Side names which response is being rendered.
type Side string

const (
	SideReal  Side = "real"
	SideClone Side = "clone"
)

// Classifier answers per-path classification queries against one diff.
type Classifier struct {
	diff   *differ.Result
	ignore *differ.IgnoreMatcher
}

// NewClassifier returns a Classifier over diff. ignore names the identifier
// fields to report as ignored; nil means differ.DefaultIgnore.
func NewClassifier(diff *differ.Result, ignore []string) *Classifier {
	if ignore == nil {
		ignore = differ.DefaultIgnore
	}
	return &Classifier{
		diff:   diff,
		ignore: differ.NewIgnoreMatcher(ignore),
	}
}

// GetDiffClassForPath classifies path for side using the default identifier
// ignore list.
func GetDiffClassForPath(diff *differ.Result, path string, side Side) Class {
	return NewClassifier(diff, nil).Classify(path, side)
}

// Classify resolves, in order: an exact record at path, an ignored field
// name, a type mismatch at the parent or root, and finally match (or none
// when the documents agree entirely).
func (c *Classifier) Classify(path string, side Side) Class {
	if path == "" {
		path = differ.RootPath
	}

	if rec, ok := c.diff.Find(path); ok {
		if cls, ok := classForRecord(rec, side); ok {
			return cls
		}
	}

	if field := fieldName(path); field != "" && c.ignore.Match(path, field) {
		return Ignored
	}

	if c.typeMismatchAt(parentPath(path)) || c.typeMismatchAt(differ.RootPath) {
		return Mismatch
	}

	if c.diff != nil && c.diff.HasDifferences {
		return Match
	}
	return None
}

func classForRecord(rec differ.Record, side Side) (Class, bool) {
	switch rec.Type {
	case differ.TypeMismatch, differ.ValueMismatch, differ.ArrayLengthMismatch:
		return Mismatch, true
	case differ.MissingInReal:
		if side == SideClone {
			return Mismatch, true
		}
	case differ.MissingInClone:
		if side == SideReal {
			return Mismatch, true
		}
	case differ.MissingResponse:
		if (side == SideReal && !rec.Real.IsAbsent()) || (side == SideClone && !rec.Clone.IsAbsent()) {
			return Mismatch, true
		}
	}
	return "", false
}

func (c *Classifier) typeMismatchAt(path string) bool {
	if path == "" {
		return false
	}
	rec, ok := c.diff.Find(path)
	return ok && rec.Type == differ.TypeMismatch
}

// fieldName is the key of the last path segment. Array elements and the
// root have none.
func fieldName(path string) string {
	if path == differ.RootPath || strings.HasSuffix(path, "]") {
		return ""
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// parentPath is the immediate parent of path: "a.b" -> "a", "a[2]" -> "a",
// "a[2].c" -> "a[2]", a top-level key -> the root. The root has no parent.
func parentPath(path string) string {
	if path == differ.RootPath {
		return ""
	}

	dot := strings.LastIndexByte(path, '.')
	bracket := strings.LastIndexByte(path, '[')
	cut := max(dot, bracket)
	if cut <= 0 {
		return differ.RootPath
	}
	return path[:cut]
}
