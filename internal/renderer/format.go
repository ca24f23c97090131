// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package renderer

import (
	"fmt"

	"github.com/staranto/apiparity/internal/differ"
)

// FormatRecord is the one-line summary text for rec.
func FormatRecord(rec differ.Record) string {
	switch rec.Type {
	case differ.TypeMismatch:
		return fmt.Sprintf("%s: real is %s, clone is %s", rec.Path, rec.Real.Kind(), rec.Clone.Kind())
	case differ.ValueMismatch:
		return fmt.Sprintf("%s: real %s, clone %s", rec.Path, rec.Real, rec.Clone)
	case differ.MissingInReal:
		return fmt.Sprintf("%s: only in clone (%s)", rec.Path, clip(rec.Clone.String()))
	case differ.MissingInClone:
		return fmt.Sprintf("%s: only in real (%s)", rec.Path, clip(rec.Real.String()))
	case differ.ArrayLengthMismatch:
		return fmt.Sprintf("%s: real has %s item(s), clone has %s", rec.Path, rec.Real, rec.Clone)
	case differ.MissingResponse:
		if rec.Real.IsAbsent() {
			return "real returned no body"
		}
		return "clone returned no body"
	default:
		return rec.Message
	}
}

func clip(s string) string {
	const limit = 60
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
