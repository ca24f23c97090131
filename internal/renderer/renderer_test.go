// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package renderer

import (
	"bytes"
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/jsonval"
)

func mustDiff(t *testing.T, real, clone string) *differ.Result {
	t.Helper()
	r, err := differ.GenerateDiffBytes([]byte(real), []byte(clone))
	require.NoError(t, err)
	return r
}

func find(n *Node, path string) *Node {
	if n == nil {
		return nil
	}
	if n.Path == path {
		return n
	}
	for _, c := range n.Children {
		if got := find(c, path); got != nil {
			return got
		}
	}
	return nil
}

func TestGetDiffClassForPath(t *testing.T) {
	diff := mustDiff(t,
		`{"a":1,"b":{"x":1},"c":[1,2],"d":"same","only":"real","id":"1","nested":{"threadId":"t"}}`,
		`{"a":2,"b":[1],"c":[1],"d":"same","extra":true,"id":"2","nested":{"threadId":"u"}}`)

	tests := []struct {
		name string
		path string
		side Side
		want Class
	}{
		{"value mismatch real", "a", SideReal, Mismatch},
		{"value mismatch clone", "a", SideClone, Mismatch},
		{"type mismatch", "b", SideClone, Mismatch},
		{"child of type mismatch", "b.x", SideReal, Mismatch},
		{"element of type mismatch", "b[0]", SideClone, Mismatch},
		{"missing in clone flags real", "only", SideReal, Mismatch},
		{"missing in real flags clone", "extra", SideClone, Mismatch},
		{"missing in clone elsewhere", "c[1]", SideReal, Mismatch},
		{"matching leaf", "d", SideReal, Match},
		{"matching element", "c[0]", SideClone, Match},
		{"array container", "c", SideReal, Match},
		{"ignored id", "id", SideReal, Ignored},
		{"ignored nested id", "nested.threadId", SideClone, Ignored},
		{"root", "", SideReal, Match},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetDiffClassForPath(diff, tt.path, tt.side))
		})
	}
}

func TestGetDiffClassForPath_NoDifferences(t *testing.T) {
	diff := mustDiff(t, `{"a":1,"id":"x"}`, `{"a":1,"id":"y"}`)
	require.False(t, diff.HasDifferences)

	assert.Equal(t, None, GetDiffClassForPath(diff, "a", SideReal))
	assert.Equal(t, Ignored, GetDiffClassForPath(diff, "id", SideReal))
}

func TestGetDiffClassForPath_RootTypeMismatchTaintsEverything(t *testing.T) {
	diff := mustDiff(t, `{"a":{"b":1}}`, `[1]`)

	assert.Equal(t, Mismatch, GetDiffClassForPath(diff, "<root>", SideReal))
	assert.Equal(t, Mismatch, GetDiffClassForPath(diff, "a.b", SideReal))
	assert.Equal(t, Mismatch, GetDiffClassForPath(diff, "[0]", SideClone))
}

func TestGetDiffClassForPath_MissingResponse(t *testing.T) {
	diff := differ.GenerateDiff(jsonval.Value{}, jsonval.MustParse(`{"a":1}`))

	assert.Equal(t, Mismatch, GetDiffClassForPath(diff, "", SideClone))
	assert.Equal(t, Match, GetDiffClassForPath(diff, "", SideReal))
	assert.Equal(t, Match, GetDiffClassForPath(diff, "a", SideClone))
}

func TestClassifier_CustomIgnore(t *testing.T) {
	diff := mustDiff(t, `{"etag":"a","n":1}`, `{"etag":"a","n":2}`)
	c := NewClassifier(diff, []string{"*.etag", "etag"})
	assert.Equal(t, Ignored, c.Classify("etag", SideReal))
	assert.Equal(t, Mismatch, c.Classify("n", SideReal))

	c = NewClassifier(diff, []string{})
	assert.Equal(t, Match, c.Classify("id", SideReal), "empty list ignores nothing")
}

func TestParentPath(t *testing.T) {
	tests := map[string]string{
		"a":         "<root>",
		"a.b":       "a",
		"a[2]":      "a",
		"a[2].c":    "a[2]",
		"a.b[0][1]": "a.b[0]",
		"[3]":       "<root>",
		"[3].x":     "[3]",
		"<root>":    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, parentPath(in), in)
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "visibility", fieldName("labels[1].visibility"))
	assert.Equal(t, "id", fieldName("id"))
	assert.Equal(t, "", fieldName("labels[1]"))
	assert.Equal(t, "", fieldName("<root>"))
}

func TestBuildTree_SideIndependence(t *testing.T) {
	real := jsonval.MustParse(`{"foo":{"deep":[1,2]},"bar":1}`)
	clone := jsonval.MustParse(`{"bar":1}`)
	diff := differ.GenerateDiff(real, clone)

	require.Len(t, diff.Details, 1)
	require.Equal(t, differ.MissingInClone, diff.Details[0].Type)

	cls := NewClassifier(diff, nil)

	realTree := BuildTree(real, SideReal, cls)
	foo := find(realTree, "foo")
	require.NotNil(t, foo)
	assert.Equal(t, Mismatch, foo.Class)
	require.NotNil(t, foo.Key)
	assert.Equal(t, "foo", *foo.Key)

	var cloneTree *Node
	require.NotPanics(t, func() {
		cloneTree = BuildTree(clone, SideClone, cls)
	})
	assert.Nil(t, find(cloneTree, "foo"))
	assert.Equal(t, Match, find(cloneTree, "bar").Class)
}

func TestBuildTree_DivergedShapes(t *testing.T) {
	real := jsonval.MustParse(`{"x":{"a":{"b":[1,{"c":null}]}}}`)
	clone := jsonval.MustParse(`{"x":[[],{}]}`)
	diff := differ.GenerateDiff(real, clone)
	cls := NewClassifier(diff, nil)

	require.NotPanics(t, func() {
		r := BuildTree(real, SideReal, cls)
		c := BuildTree(clone, SideClone, cls)
		assert.Equal(t, Mismatch, find(r, "x").Class)
		assert.Equal(t, Mismatch, find(r, "x.a").Class)
		assert.Equal(t, Mismatch, find(c, "x[0]").Class)
		assert.Empty(t, find(c, "x[0]").Children)
	})
}

func TestBuildTree_Shapes(t *testing.T) {
	assert.Nil(t, BuildTree(jsonval.Value{}, SideReal, NewClassifier(differ.NewResult(nil), nil)))

	diff := differ.NewResult(nil)
	n := BuildTree(jsonval.MustParse(`{"o":{},"a":[],"s":"x","n":null}`), SideReal, NewClassifier(diff, nil))
	require.NotNil(t, n)
	assert.Equal(t, "<root>", n.Path)
	assert.Equal(t, None, n.Class)
	require.Len(t, n.Children, 4)
	assert.Equal(t, "object", n.Children[0].Kind)
	assert.Nil(t, n.Children[0].Children)
	assert.Equal(t, "array", n.Children[1].Kind)
	require.NotNil(t, n.Children[3].Value)
	assert.Equal(t, jsonval.Null, n.Children[3].Value.Kind())

	arr := BuildTree(jsonval.MustParse(`[10,20]`), SideReal, NewClassifier(diff, nil))
	require.Len(t, arr.Children, 2)
	assert.Equal(t, "[1]", arr.Children[1].Path)
	require.NotNil(t, arr.Children[1].Index)
	assert.Equal(t, 1, *arr.Children[1].Index)
}

func TestRenderComparisonView(t *testing.T) {
	real := dual.OK(200, jsonval.MustParse(`{"user":{"name":"Alice","age":30},"tags":["a","b"]}`), 0)
	clone := dual.OK(200, jsonval.MustParse(`{"user":{"name":"Alice","age":"30"},"tags":["a"]}`), 0)
	diff := differ.GenerateDiff(real.Body, clone.Body)

	v := RenderComparisonView(real, clone, diff, WithRequest(dual.Request{Method: "GET", Endpoint: "/me"}))

	assert.False(t, v.Summary.Match)
	assert.Equal(t, 3, v.Summary.Count)
	require.Len(t, v.Summary.Groups, 2)
	assert.Equal(t, differ.SeverityHigh, v.Summary.Groups[0].Severity)
	assert.Equal(t, differ.SeverityMedium, v.Summary.Groups[1].Severity)
	assert.Len(t, v.Summary.Groups[1].Lines, 2)

	assert.Equal(t, SideReal, v.Real.Side)
	assert.Equal(t, "GET", v.Real.Request.Method)
	assert.Equal(t, Mismatch, find(v.Real.Body, "user.age").Class)
	assert.Equal(t, Match, find(v.Clone.Body, "user.name").Class)
	assert.Equal(t, Mismatch, find(v.Real.Body, "tags[1]").Class)
	assert.Nil(t, find(v.Clone.Body, "tags[1]"))
	assert.NotEmpty(t, v.Separator)
	assert.Positive(t, v.Real.Size)
}

func TestRenderComparisonView_NilBodiesAndDiff(t *testing.T) {
	real := dual.Failed("HTTP 500: boom", 0)
	clone := dual.Failed("connection refused", 0)

	var v *View
	require.NotPanics(t, func() {
		v = RenderComparisonView(real, clone, nil)
	})
	assert.True(t, v.Summary.Match)
	assert.Nil(t, v.Real.Body)
	assert.Nil(t, v.Clone.Body)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v, PlainStyles()))
	assert.Contains(t, buf.String(), "error: HTTP 500: boom")
	assert.Contains(t, buf.String(), "(no body)")
}

func TestRenderComparisonView_JSON(t *testing.T) {
	real := dual.OK(200, jsonval.MustParse(`{"a":1}`), 0)
	clone := dual.OK(200, jsonval.MustParse(`{"a":2}`), 0)
	v := RenderComparisonView(real, clone, differ.GenerateDiff(real.Body, clone.Body))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"class":"mismatch"`)
	assert.NotContains(t, string(out), "Separator")
}

func TestFormatRecord(t *testing.T) {
	diff := mustDiff(t, `{"a":1,"b":{},"c":[1,2],"r":"x"}`, `{"a":2,"b":[],"c":[1],"k":true}`)

	var got []string
	for _, rec := range diff.Details {
		got = append(got, FormatRecord(rec))
	}
	assert.Equal(t, []string{
		"a: real 1, clone 2",
		"b: real is object, clone is array",
		"c.length: real has 2 item(s), clone has 1",
		"c[1]: only in real (2)",
		`r: only in real ("x")`,
		"k: only in clone (true)",
	}, got)

	missing := differ.GenerateDiff(jsonval.MustParse(`1`), jsonval.NewNull())
	assert.Equal(t, "clone returned no body", FormatRecord(missing.Details[0]))

	assert.Equal(t, "custom", FormatRecord(differ.Record{Type: "other", Message: "custom"}))
}

func TestText_Plain(t *testing.T) {
	real := dual.OK(200, jsonval.MustParse(`{"id":"1","n":1,"e":{},"l":[]}`), 1500)
	clone := dual.OK(200, jsonval.MustParse(`{"id":"2","n":2,"e":{},"l":[]}`), 0)
	diff := differ.GenerateDiff(real.Body, clone.Body)
	v := RenderComparisonView(real, clone, diff)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v, PlainStyles()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Responses differ: 1 difference(s)\n"))
	assert.Contains(t, out, "  HIGH\n")
	assert.Contains(t, out, "value_mismatch  n: real 1, clone 2")
	assert.Contains(t, out, `! "n": 1,`)
	assert.Contains(t, out, `~ "id": "1",`)
	assert.Contains(t, out, `  "e": {},`)
	assert.Contains(t, out, `  "l": []`)
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, Separator)
	assert.Equal(t, 2, strings.Count(out, `"n": `))
}

func TestText_EmptyKey(t *testing.T) {
	body := jsonval.MustParse(`{"":1,"a":[2]}`)
	resp := dual.OK(200, body, 0)
	v := RenderComparisonView(resp, resp, differ.GenerateDiff(body, body))

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v, PlainStyles()))
	assert.Contains(t, buf.String(), `"": 1,`)
	assert.Contains(t, buf.String(), "    2\n")

	out, err := json.Marshal(v.Real.Body)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"key":""`)
	assert.Nil(t, v.Real.Body.Key)
	assert.Nil(t, v.Real.Body.Children[1].Children[0].Key)
}

func TestText_Match(t *testing.T) {
	body := jsonval.MustParse(`[1,2]`)
	resp := dual.OK(200, body, 0)
	v := RenderComparisonView(resp, resp, differ.GenerateDiff(body, body))

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v, PlainStyles()))
	assert.True(t, strings.HasPrefix(buf.String(), "Responses match\n"))
	assert.Contains(t, buf.String(), "  [\n    1,\n    2\n  ]\n")
}

func TestText_Colored(t *testing.T) {
	resolve := func(_, light, _ string) color.Color { return lipgloss.Color(light) }
	st := ColorStyles(resolve)
	assert.True(t, st.Enabled)

	real := dual.OK(200, jsonval.MustParse(`{"n":1}`), 0)
	clone := dual.OK(200, jsonval.MustParse(`{"n":2}`), 0)
	v := RenderComparisonView(real, clone, differ.GenerateDiff(real.Body, clone.Body))

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, v, st))
	assert.Contains(t, buf.String(), `"n": 1`)
	assert.NotContains(t, buf.String(), `! "n"`, "no marker column when colored")
}
