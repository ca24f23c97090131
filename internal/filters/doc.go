// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters narrows a diff to the records an operator cares about.
//
// Filters are key-operator-target expressions, comma separated by default
// (APIPARITY_FILTER_DELIM overrides the delimiter). A record survives only
// when it matches every filter.
//
// Operators, each negatable with a leading '!':
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than
//   - > : greater than
//   - @ : contains (substring, or element/key of a real or clone container)
//   - / : regular expression match
//
// Keys:
//
//   - path     : the record path, e.g. labels[0].name
//   - type     : value_mismatch, missing_in_clone, ...
//   - severity : high, medium or low; < and > compare by rank
//   - message  : the record message
//   - real     : the real-side value; numbers compare numerically
//   - clone    : the clone-side value
//
// Examples:
//
//   - "type=value_mismatch"
//   - "path^labels,severity>medium" : high records under labels
//   - "type!=missing_in_real"
//   - "real>100"
//
// Malformed expressions and unknown keys are logged and skipped.
package filters
