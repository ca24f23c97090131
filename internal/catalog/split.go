// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// coercers turn a raw string into a body value of the declared type.
var coercers = map[string]func(string) (any, error){
	"string": func(s string) (any, error) { return s, nil },
	"integer": func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	"number": func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	},
	"boolean": func(s string) (any, error) {
		return strconv.ParseBool(s)
	},
	"json": func(s string) (any, error) {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
		return v, nil
	},
}

// ParseAssignments turns name=value arguments into a map. A repeated name
// keeps the last value.
func ParseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", arg)
		}
		out[name] = value
	}
	return out, nil
}

// Split partitions values into the three disjoint parameter maps. Defaults
// fill absent params, required params must be present, body values are
// coerced to their declared type and unknown names are rejected. Query and
// path values are never coerced.
func (e Endpoint) Split(values map[string]string) (path, query map[string]string, body map[string]any, err error) {
	path = map[string]string{}
	query = map[string]string{}
	body = map[string]any{}

	if e.adHoc {
		return e.splitAdHoc(values, path, query, body)
	}

	var unknown []string
	for name := range values {
		if _, ok := e.Param(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, nil, fmt.Errorf("unknown parameter(s) for %s: %s", e.Name, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, p := range e.Params {
		raw, ok := values[p.Name]
		if !ok {
			if p.Default == "" {
				if p.Required {
					missing = append(missing, p.Name)
				}
				continue
			}
			raw = p.Default
		}

		switch p.In {
		case InPath:
			path[p.Name] = raw
		case InQuery:
			query[p.Name] = raw
		case InBody:
			v, err := coercers[p.Type](raw)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("parameter %s: %q is not a valid %s", p.Name, raw, p.Type)
			}
			body[p.Name] = v
		}
	}

	if len(missing) > 0 {
		return nil, nil, nil, fmt.Errorf("missing required parameter(s) for %s: %s", e.Name, strings.Join(missing, ", "))
	}
	return path, query, body, nil
}

func (e Endpoint) splitAdHoc(values map[string]string, path, query map[string]string, body map[string]any) (map[string]string, map[string]string, map[string]any, error) {
	inPath := make(map[string]bool)
	for _, name := range Placeholders(e.Path) {
		inPath[name] = true
	}

	queryMethod := e.Method == http.MethodGet || e.Method == http.MethodDelete || e.Method == http.MethodHead
	for name, v := range values {
		switch {
		case inPath[name]:
			path[name] = v
		case queryMethod:
			query[name] = v
		default:
			body[name] = v
		}
	}

	var missing []string
	for name := range inPath {
		if _, ok := path[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, nil, fmt.Errorf("missing path parameter(s) for %s: %s", e.Name, strings.Join(missing, ", "))
	}
	return path, query, body, nil
}
