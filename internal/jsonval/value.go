// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind tags a Value. Undefined is distinct from Null: it marks a value that is
// absent altogether (a missing key, a missing response body).
type Kind int

const (
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{"undefined", "null", "boolean", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Member is one key/value pair of an Object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is Undefined.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	raw     string // original number text, kept for display
	s       string
	items   []Value
	members []Member
	index   map[string]int
}

// Constructors. These are mostly used by tests and by code that builds values
// programmatically; parsed values come from Parse.

func NewNull() Value { return Value{kind: Null} }

func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

func NewString(s string) Value { return Value{kind: String, s: s} }

func NewArray(items ...Value) Value {
	return Value{kind: Array, items: append([]Value{}, items...)}
}

// NewNumber returns a Number value displayed in its shortest form.
func NewNumber(n float64) Value {
	return Value{kind: Number, n: n, raw: strconv.FormatFloat(n, 'f', -1, 64)}
}

// NewObject builds an Object. A repeated key keeps its first position and its
// last value, like JSON decoders do.
func NewObject(members ...Member) Value {
	v := Value{kind: Object, index: make(map[string]int, len(members))}
	for _, m := range members {
		if i, ok := v.index[m.Key]; ok {
			v.members[i].Value = m.Value
			continue
		}
		v.index[m.Key] = len(v.members)
		v.members = append(v.members, m)
	}
	return v
}

// Parse decodes a JSON document. Empty or whitespace-only input yields
// Undefined, which callers treat as an absent body.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, nil
	}
	if !gjson.ValidBytes(data) {
		return Value{}, fmt.Errorf("invalid JSON document")
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

// FromResult converts a gjson result, preserving object key order.
func FromResult(r gjson.Result) Value {
	if !r.Exists() {
		return Value{}
	}

	switch r.Type {
	case gjson.Null:
		return NewNull()
	case gjson.False:
		return NewBool(false)
	case gjson.True:
		return NewBool(true)
	case gjson.Number:
		return Value{kind: Number, n: r.Num, raw: r.Raw}
	case gjson.String:
		return NewString(r.Str)
	}

	if r.IsArray() {
		var items []Value
		r.ForEach(func(_, item gjson.Result) bool {
			items = append(items, FromResult(item))
			return true
		})
		return Value{kind: Array, items: items}
	}

	var members []Member
	r.ForEach(func(key, item gjson.Result) bool {
		members = append(members, Member{Key: key.Str, Value: FromResult(item)})
		return true
	})
	return NewObject(members...)
}

// Kind reports the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is Undefined or Null. Both count as "no value"
// when deciding whether a response body is present.
func (v Value) IsAbsent() bool { return v.kind == Undefined || v.kind == Null }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.n }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Len is the element count of an Array or the member count of an Object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th array element, or Undefined when out of range.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Items returns the array elements. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns the object members in document order. The slice must not be
// modified.
func (v Value) Members() []Member { return v.members }

// Get returns the member value for key and whether it is present.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	i, ok := v.index[key]
	if !ok {
		return Value{}, false
	}
	return v.members[i].Value, true
}

// Has reports whether an object carries key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns object keys in document order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.members))
	for _, m := range v.members {
		keys = append(keys, m.Key)
	}
	return keys
}

// PrimitiveEqual is strict equality for scalar values of the same kind.
// Numbers compare numerically so 1 and 1.0 are equal.
func (v Value) PrimitiveEqual(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Undefined, Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	default:
		return false
	}
}

// Equal is deep structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for _, m := range v.members {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return v.PrimitiveEqual(o)
	}
}

// String renders v compactly. Strings are quoted, Undefined renders as
// "undefined".
func (v Value) String() string {
	if v.kind == Undefined {
		return "undefined"
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}

// Interface converts v to the encoding/json generic representation. Undefined
// converts to nil.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(v.members))
		for _, m := range v.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON keeps object key order. Undefined marshals as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Undefined, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if v.raw != "" {
			buf.WriteString(v.raw)
		} else {
			buf.WriteString(strconv.FormatFloat(v.n, 'f', -1, 64))
		}
	case String:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON parses data into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML emits the generic representation. Object key order is not kept.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

// IsZero reports whether v is Undefined, so YAML omitempty drops absent
// values.
func (v Value) IsZero() bool {
	return v.kind == Undefined
}
