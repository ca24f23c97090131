// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/jsonval"
)

// segment is one dot-separated part: an optional key then any number of
// [n] or [*] selectors.
var segment = regexp.MustCompile(`^([^\[\]]*)((?:\[(?:\d+|\*)\])*)$`)

var selector = regexp.MustCompile(`\[(\d+|\*)\]`)

// Translate converts a diff path into a gjson path. The empty path and the
// root marker address the whole document and translate to "".
func Translate(path string) (string, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, differ.RootPath)
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "", nil
	}

	var out []string
	for i, part := range strings.Split(path, ".") {
		matches := segment.FindStringSubmatch(part)
		if matches == nil {
			return "", fmt.Errorf("invalid path %q: bad segment %q", path, part)
		}

		key := matches[1]
		if key == "" && (i > 0 || matches[2] == "") {
			return "", fmt.Errorf("invalid path %q: empty key", path)
		}
		if key != "" {
			out = append(out, escape(key))
		}

		for _, sel := range selector.FindAllStringSubmatch(matches[2], -1) {
			if sel[1] == "*" {
				out = append(out, "#")
				continue
			}
			out = append(out, sel[1])
		}
	}

	// A trailing # would make gjson count the array instead of returning it.
	for len(out) > 0 && out[len(out)-1] == "#" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "."), nil
}

// Drill returns the part of v addressed by at. A path that resolves to
// nothing yields an Undefined value, not an error.
func Drill(v jsonval.Value, at string) (jsonval.Value, error) {
	gpath, err := Translate(at)
	if err != nil {
		return jsonval.Value{}, err
	}
	if gpath == "" || v.Kind() == jsonval.Undefined {
		return v, nil
	}
	return jsonval.FromResult(gjson.Get(v.String(), gpath)), nil
}

// escape backslashes every character gjson gives meaning to inside a key.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
