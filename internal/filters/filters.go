// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/jsonval"
)

// filterRegex splits an expression into key, operator (with optional
// negation) and target. Examples: "path" (key only), "type=value_mismatch",
// "message!@count".
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Keys lists the record fields a filter may address.
var Keys = []string{"path", "type", "severity", "message", "real", "clone"}

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Invalid specs (unknown key or missing operand) are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Allow an override for values that contain commas.
	delim := ","
	if d, ok := os.LookupEnv("APIPARITY_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		target := parts[3]

		if key == "" {
			log.Error("invalid filter: empty key in " + filterSpec)
			continue
		}
		if !knownKey(key) {
			log.Errorf("invalid filter: unknown key %q (want one of %s)", key, strings.Join(Keys, ", "))
			continue
		}
		if operand == "" {
			log.Error("invalid filter: missing operator in " + filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   target,
		})
	}

	return filters
}

// Apply returns a new result holding only the records of diff that match
// every filter in spec. An empty spec returns diff unchanged.
func Apply(diff *differ.Result, spec string) *differ.Result {
	if diff == nil {
		return differ.NewResult(nil)
	}

	filters := BuildFilters(spec)
	if len(filters) == 0 {
		return diff
	}

	//nolint:prealloc
	var kept []differ.Record
	for _, rec := range diff.Details {
		if Match(rec, filters) {
			kept = append(kept, rec)
		}
	}

	log.Debugf("filters kept %d of %d record(s)", len(kept), len(diff.Details))
	return differ.NewResult(kept)
}

// Match reports whether rec passes every filter.
func Match(rec differ.Record, filters []Filter) bool {
	for _, filter := range filters {
		if !matchOne(rec, filter) {
			return false
		}
	}
	return true
}

func matchOne(rec differ.Record, filter Filter) bool {
	switch filter.Key {
	case "path":
		return checkStringOperand(rec.Path, filter)
	case "type":
		return checkStringOperand(string(rec.Type), filter)
	case "message":
		return checkStringOperand(rec.Message, filter)
	case "severity":
		return checkSeverityOperand(rec.Severity, filter)
	case "real":
		return checkValueOperand(rec.Real, filter)
	case "clone":
		return checkValueOperand(rec.Clone, filter)
	default:
		log.Error("unsupported filter key: " + filter.Key)
		return false
	}
}

// checkValueOperand evaluates a filter against one side's value. An absent
// side only ever satisfies a negated filter.
func checkValueOperand(v jsonval.Value, filter Filter) bool {
	switch v.Kind() {
	case jsonval.Undefined:
		return filter.Negate
	case jsonval.String:
		return checkStringOperand(v.Str(), filter)
	case jsonval.Number:
		if filter.Operand == "=" || filter.Operand == "<" || filter.Operand == ">" {
			return checkNumericOperand(v.Num(), filter)
		}
		return checkStringOperand(v.String(), filter)
	case jsonval.Array, jsonval.Object:
		if filter.Operand == "@" {
			return checkContainsOperand(v, filter)
		}
		return checkStringOperand(v.String(), filter)
	default:
		return checkStringOperand(v.String(), filter)
	}
}

// checkContainsOperand evaluates '@' against a container: an array element
// equal to the target, or an object key named by it.
func checkContainsOperand(v jsonval.Value, filter Filter) bool {
	found := false
	switch v.Kind() {
	case jsonval.Array:
		for _, item := range v.Items() {
			s := item.String()
			if item.Kind() == jsonval.String {
				s = item.Str()
			}
			if s == filter.Value {
				found = true
				break
			}
		}
	case jsonval.Object:
		found = v.Has(filter.Value)
	default:
		log.Error(fmt.Sprintf("unsupported kind for contains filtering: %s", v.Kind()))
		return false
	}
	return found == !filter.Negate
}

// checkSeverityOperand compares severities by rank for < and >, and as
// strings otherwise.
func checkSeverityOperand(sev differ.Severity, filter Filter) bool {
	if filter.Operand != "<" && filter.Operand != ">" {
		return checkStringOperand(string(sev), filter)
	}

	have, ok := rank(string(sev))
	want, ok2 := rank(strings.TrimSpace(filter.Value))
	if !ok || !ok2 {
		log.Error("invalid severity: " + filter.Value)
		return false
	}

	if filter.Operand == ">" {
		return (have > want) == !filter.Negate
	}
	return (have < want) == !filter.Negate
}

// rank orders severities so that high > medium > low.
func rank(s string) (int, bool) {
	for i, sev := range differ.Severities {
		if strings.EqualFold(s, string(sev)) {
			return len(differ.Severities) - i, true
		}
	}
	return 0, false
}

// checkNumericOperand compares a numeric value against the filter value using
// numeric semantics. Supported operands: =, >, <.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		log.Error("invalid numeric value: " + filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
