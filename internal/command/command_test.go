// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/apiparity/internal/cacheutil"
	"github.com/staranto/apiparity/internal/config"
	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/meta"
)

const testCatalog = `endpoints:
  - name: labels.list
    method: GET
    path: /users/{userId}/labels
    docs: Lists labels.
    params:
      - name: userId
        in: path
        default: me
  - name: messages.list
    method: GET
    path: /users/{userId}/messages
    params:
      - name: userId
        in: path
        default: me
      - name: q
        in: query
  - name: labels.create
    method: POST
    path: /users/{userId}/labels
    params:
      - name: userId
        in: path
        default: me
      - name: name
        in: body
        required: true
`

// comparisonOutput is the subset of --output json the tests inspect.
type comparisonOutput struct {
	Diff struct {
		HasDifferences bool `json:"hasDifferences"`
		Details        []struct {
			Path     string `json:"path"`
			Type     string `json:"type"`
			Severity string `json:"severity"`
		} `json:"details"`
	} `json:"diff"`
	View struct {
		Summary struct {
			Verdict string `json:"verdict"`
		} `json:"summary"`
		Real struct {
			Body struct {
				Children []struct {
					Path  string `json:"path"`
					Class string `json:"class"`
				} `json:"children"`
			} `json:"body"`
		} `json:"real"`
		Clone struct {
			Error *string `json:"error"`
		} `json:"clone"`
	} `json:"view"`
}

type harness struct {
	t       *testing.T
	store   *cacheutil.Store
	stdin   io.Reader
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	catalog string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	config.Config = config.Type{}
	t.Setenv("APIPARITY_CFG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	for _, env := range []string{
		"APIPARITY_REAL_URL", "APIPARITY_CLONE_URL",
		"APIPARITY_REAL_TOKEN", "APIPARITY_CLONE_TOKEN",
		"APIPARITY_REAL_RATE", "APIPARITY_CLONE_RATE",
		"APIPARITY_CATALOG",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}

	cat := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(cat, []byte(testCatalog), 0o600))

	return &harness{
		t:       t,
		store:   cacheutil.NewStoreAt(t.TempDir()),
		stdin:   strings.NewReader(""),
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		catalog: cat,
	}
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	argv := append([]string{"apiparity"}, args...)
	app := NewApp(meta.Meta{
		Args:    argv,
		Context: context.Background(),
		Store:   h.store,
		Stdin:   h.stdin,
		Stdout:  h.stdout,
		Stderr:  h.stderr,
	})
	return app.Run(context.Background(), argv)
}

func (h *harness) comparison() comparisonOutput {
	h.t.Helper()
	var out comparisonOutput
	require.NoError(h.t, json.Unmarshal(h.stdout.Bytes(), &out), h.stdout.String())
	return out
}

func jsonServer(t *testing.T, status int, body string, check ...func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, c := range check {
			c(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestCall_AdHocMatchIgnoresIdentifiers(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"id":"r-1","labels":[{"name":"Inbox"}]}`)
	clone := jsonServer(t, http.StatusOK, `{"id":"c-9","labels":[{"name":"Inbox"}]}`)

	err := h.run("call", "--real", real.URL, "--clone", clone.URL, "--output", "json", "/labels")

	require.NoError(t, err)
	out := h.comparison()
	assert.False(t, out.Diff.HasDifferences)
	assert.Empty(t, out.Diff.Details)
	assert.Equal(t, "Responses match", out.View.Summary.Verdict)
}

func TestCall_CatalogEndpointSendsParamsAndTokens(t *testing.T) {
	h := newHarness(t)
	var realAuth, clonePath, cloneQuery string
	real := jsonServer(t, http.StatusOK, `{"messages":[]}`, func(r *http.Request) {
		realAuth = r.Header.Get("Authorization")
	})
	clone := jsonServer(t, http.StatusOK, `{"messages":[]}`, func(r *http.Request) {
		clonePath = r.URL.Path
		cloneQuery = r.URL.Query().Get("q")
	})

	err := h.run("call",
		"--catalog", h.catalog,
		"--real", real.URL, "--real-token", "secret",
		"--clone", clone.URL,
		"--output", "raw",
		"messages.list", "q=is:unread")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", realAuth)
	assert.Equal(t, "/users/me/messages", clonePath)
	assert.Equal(t, "is:unread", cloneQuery)

	var result dual.Result
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	assert.Equal(t, "/users/{userId}/messages", result.Request.Endpoint)
	assert.Equal(t, "me", result.Request.PathParams["userId"])
	assert.Equal(t, "is:unread", result.Request.QueryParams["q"])
}

func TestCall_ParamFlag(t *testing.T) {
	h := newHarness(t)
	var got string
	real := jsonServer(t, http.StatusOK, `{}`)
	clone := jsonServer(t, http.StatusOK, `{}`, func(r *http.Request) {
		got = r.URL.Path
	})

	err := h.run("call", "--catalog", h.catalog, "--real", real.URL, "--clone", clone.URL,
		"--param", "userId=someone", "labels.list")

	require.NoError(t, err)
	assert.Equal(t, "/users/someone/labels", got)
}

func TestCall_DivergenceWithExitCode(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"labels":[{"name":"Inbox"}]}`)
	clone := jsonServer(t, http.StatusOK, `{"labels":[{"name":"INBOX"}]}`)

	err := h.run("call", "--real", real.URL, "--clone", clone.URL, "--exit-code", "/labels")

	assert.True(t, errors.Is(err, ErrDivergent))
	assert.Contains(t, h.stdout.String(), "Responses differ: 1 difference(s)")
	assert.Contains(t, h.stdout.String(), "labels[0].name")
}

func TestCall_DivergenceWithoutExitCode(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"a":1}`)
	clone := jsonServer(t, http.StatusOK, `{"a":2}`)

	err := h.run("call", "--real", real.URL, "--clone", clone.URL, "/x")

	assert.NoError(t, err)
}

func TestCall_FailedSideIsMissingResponse(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"a":1}`)
	clone := jsonServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	err := h.run("call", "--real", real.URL, "--clone", clone.URL, "-o", "json", "/x")

	require.NoError(t, err)
	out := h.comparison()
	require.Len(t, out.Diff.Details, 1)
	assert.Equal(t, "missing_response", out.Diff.Details[0].Type)
	assert.Equal(t, "high", out.Diff.Details[0].Severity)
	require.NotNil(t, out.View.Clone.Error)
	assert.Contains(t, *out.View.Clone.Error, "500")
}

func TestCall_CachedReplay(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"a":1}`)
	clone := jsonServer(t, http.StatusOK, `{"a":2}`)

	require.NoError(t, h.run("call", "--real", real.URL, "--clone", clone.URL, "-o", "json", "/x"))
	live := h.comparison()

	real.Close()
	clone.Close()

	require.NoError(t, h.run("call", "--cached", "--real", real.URL, "--clone", clone.URL, "-o", "json", "/x"))
	replayed := h.comparison()

	assert.Equal(t, live.Diff, replayed.Diff)
	require.Len(t, replayed.Diff.Details, 1)
	assert.Equal(t, "a", replayed.Diff.Details[0].Path)
}

func TestCall_CachedMiss(t *testing.T) {
	h := newHarness(t)

	err := h.run("call", "--cached", "--real", "http://127.0.0.1:1", "--clone", "http://127.0.0.1:2", "/never")

	assert.ErrorContains(t, err, "no stored result")
}

func TestCall_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(h *harness) []string
		want string
	}{
		{
			name: "missing real URL",
			args: func(h *harness) []string {
				return []string{"call", "--clone", "http://localhost:1", "/x"}
			},
			want: "no real base URL",
		},
		{
			name: "unknown endpoint",
			args: func(h *harness) []string {
				return []string{"call", "--catalog", h.catalog, "nope"}
			},
			want: `unknown endpoint "nope"`,
		},
		{
			name: "no endpoint without a terminal",
			args: func(h *harness) []string {
				return []string{"call", "--catalog", h.catalog}
			},
			want: "no endpoint given",
		},
		{
			name: "no catalog",
			args: func(h *harness) []string {
				return []string{"call", "labels.list"}
			},
			want: "no catalog",
		},
		{
			name: "bad assignment",
			args: func(h *harness) []string {
				return []string{"call", "/x", "userId=me", "oops"}
			},
			want: "want name=value",
		},
		{
			name: "missing required body param",
			args: func(h *harness) []string {
				return []string{"call", "--catalog", h.catalog, "--real", "http://localhost:1", "--clone", "http://localhost:2", "labels.create"}
			},
			want: "labels.create",
		},
		{
			name: "token prompt without a terminal",
			args: func(h *harness) []string {
				return []string{"call", "--real", "http://localhost:1", "--real-token", "?", "--clone", "http://localhost:2", "/x"}
			},
			want: "stdin is not a terminal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(tt.args(h)...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDiff_Files(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"labels":[{"id":"1","name":"A","n":1}],"next":"x"}`)
	clone := writeFile(t, "clone.json", `{"labels":[{"id":"2","name":"B","n":1}],"next":"y"}`)

	require.NoError(t, h.run("diff", "-o", "json", real, clone))

	out := h.comparison()
	assert.True(t, out.Diff.HasDifferences)
	var paths []string
	for _, d := range out.Diff.Details {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"labels[0].name", "next"}, paths)
}

func TestDiff_At(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"labels":[{"name":"A","n":1}],"next":"x"}`)
	clone := writeFile(t, "clone.json", `{"labels":[{"name":"B","n":1}],"next":"y"}`)

	require.NoError(t, h.run("diff", "--at", "labels[0]", "-o", "json", real, clone))

	out := h.comparison()
	require.Len(t, out.Diff.Details, 1)
	assert.Equal(t, "name", out.Diff.Details[0].Path)
	assert.Equal(t, "value_mismatch", out.Diff.Details[0].Type)
}

func TestDiff_Filter(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"a":1,"b":"x"}`)
	clone := writeFile(t, "clone.json", `{"a":2,"b":"y"}`)

	require.NoError(t, h.run("diff", "--filter", "path=b", "-o", "json", real, clone))

	out := h.comparison()
	require.Len(t, out.Diff.Details, 1)
	assert.Equal(t, "b", out.Diff.Details[0].Path)
}

func TestDiff_IgnoreNone(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"id":"1"}`)
	clone := writeFile(t, "clone.json", `{"id":"2"}`)

	require.NoError(t, h.run("diff", "-o", "json", real, clone))
	assert.False(t, h.comparison().Diff.HasDifferences)

	require.NoError(t, h.run("diff", "--ignore", "none", "-o", "json", real, clone))
	assert.True(t, h.comparison().Diff.HasDifferences)
}

func TestDiff_Stdin(t *testing.T) {
	h := newHarness(t)
	h.stdin = strings.NewReader(`{"a":1}`)
	clone := writeFile(t, "clone.json", `{"a":1}`)

	require.NoError(t, h.run("diff", "-o", "json", "-", clone))

	assert.False(t, h.comparison().Diff.HasDifferences)
}

func TestDiff_EmptyFileIsMissingResponse(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"a":1}`)
	clone := writeFile(t, "clone.json", "")

	require.NoError(t, h.run("diff", "-o", "json", real, clone))

	out := h.comparison()
	require.Len(t, out.Diff.Details, 1)
	assert.Equal(t, "missing_response", out.Diff.Details[0].Type)
}

func TestDiff_SavedResultExitCode(t *testing.T) {
	h := newHarness(t)
	saved := writeFile(t, "result.json", `{
  "request": {"endpoint": "/labels", "method": "GET"},
  "real": {"status": 200, "body": {"a": 1}, "error": null, "responseTime": 5},
  "clone": {"status": 200, "body": {"a": 2}, "error": null, "responseTime": 7},
  "dualDuration": 7
}`)

	err := h.run("diff", "--exit-code", saved)

	assert.ErrorIs(t, err, ErrDivergent)
	assert.Contains(t, h.stdout.String(), "GET /labels")
	assert.Contains(t, h.stdout.String(), "200 OK")
}

func TestDiff_SavedResultFailedSide(t *testing.T) {
	h := newHarness(t)
	saved := writeFile(t, "result.json", `{
  "request": {"endpoint": "/labels", "method": "GET"},
  "real": {"status": 200, "body": {"a": 1}, "error": null, "responseTime": 5},
  "clone": {"status": null, "error": "HTTP 500: oops", "responseTime": 3},
  "dualDuration": 5
}`)

	require.NoError(t, h.run("diff", saved))

	out := h.stdout.String()
	assert.Contains(t, out, "error: HTTP 500: oops")
	assert.Contains(t, out, "(no body)")
	assert.Contains(t, out, "missing_response")
}

func TestDiff_RawReplayKeepsFailedSide(t *testing.T) {
	h := newHarness(t)
	real := jsonServer(t, http.StatusOK, `{"a":1}`)
	clone := jsonServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	require.NoError(t, h.run("call", "--real", real.URL, "--clone", clone.URL, "-o", "raw", "/labels"))
	saved := writeFile(t, "result.json", h.stdout.String())

	require.NoError(t, h.run("diff", saved))

	assert.Contains(t, h.stdout.String(), "(no body)")
}

func TestDiff_Errors(t *testing.T) {
	h := newHarness(t)
	good := writeFile(t, "good.json", `{}`)
	bad := writeFile(t, "bad.json", `{nope`)

	assert.ErrorContains(t, h.run("diff"), "diff takes REAL CLONE")
	assert.ErrorContains(t, h.run("diff", "-", "-"), "only one side")
	assert.ErrorContains(t, h.run("diff", good, bad), "clone")
	assert.ErrorContains(t, h.run("diff", good, filepath.Join(t.TempDir(), "missing.json")), "failed to read")
	assert.ErrorContains(t, h.run("diff", bad), "not a saved result")
}

func TestDiff_Delta(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"a":1}`)
	same := writeFile(t, "same.json", `{"a":1}`)
	other := writeFile(t, "other.json", `{"a":2}`)

	require.NoError(t, h.run("diff", "-o", "delta", real, same))
	assert.Equal(t, "The responses are identical.\n", h.stdout.String())

	require.NoError(t, h.run("diff", "-o", "delta", real, other))
	assert.Contains(t, h.stdout.String(), `"a"`)
}

func TestDiff_Raw(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"a":1}`)
	clone := writeFile(t, "clone.json", `{"a":2}`)

	err := h.run("diff", "-o", "raw", "--exit-code", real, clone)

	assert.ErrorIs(t, err, ErrDivergent)
	var result dual.Result
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &result))
	assert.Equal(t, `{"a":1}`, result.Real.Body.String())
	assert.Equal(t, `{"a":2}`, result.Clone.Body.String())
}

func TestDiff_YAML(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{"a":1}`)
	clone := writeFile(t, "clone.json", `{"a":2}`)

	require.NoError(t, h.run("diff", "-o", "yaml", real, clone))

	assert.Contains(t, h.stdout.String(), "hasDifferences: true")
	assert.Contains(t, h.stdout.String(), "type: value_mismatch")
}

func TestDiff_InvalidOutput(t *testing.T) {
	h := newHarness(t)
	real := writeFile(t, "real.json", `{}`)

	assert.Error(t, h.run("diff", "-o", "xml", real, real))
}

func TestEndpoints_JSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("endpoints", "--catalog", h.catalog, "-o", "json"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "labels.create", rows[0]["name"])
	assert.Equal(t, "labels.list", rows[1]["name"])
	assert.Equal(t, "messages.list", rows[2]["name"])
	assert.Equal(t, "userId,q", rows[2]["params"])
	assert.NotContains(t, rows[0], "docs")
}

func TestEndpoints_Attrs(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("endpoints", "--catalog", h.catalog, "-o", "json", "--attrs", "docs", "--sort", "-name"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "messages.list", rows[0]["name"])
	assert.Equal(t, "Lists labels.", rows[1]["docs"])
}

func TestEndpoints_Text(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("endpoints", "--catalog", h.catalog, "--titles"))

	out := h.stdout.String()
	assert.Contains(t, out, "labels.list")
	assert.Contains(t, out, "/users/{userId}/messages")
}

func TestEndpoints_NoCatalog(t *testing.T) {
	h := newHarness(t)

	assert.ErrorContains(t, h.run("endpoints"), "no catalog")
}

func TestCompletion(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("completion", "bash"))
	assert.Contains(t, h.stdout.String(), "complete -F _apiparity apiparity")

	require.NoError(t, h.run("completion", "zsh"))
	assert.Contains(t, h.stdout.String(), "#compdef apiparity")

	t.Setenv("SHELL", "/bin/fish")
	require.NoError(t, h.run("completion"))
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), "usage: apiparity completion")
}

func TestDiff_IgnoreFromConfig(t *testing.T) {
	h := newHarness(t)
	config.Config = config.Type{Data: map[string]interface{}{
		"ignore": []interface{}{"etag"},
	}}
	real := writeFile(t, "real.json", `{"id":"1","etag":"a"}`)
	clone := writeFile(t, "clone.json", `{"id":"1","etag":"b"}`)

	require.NoError(t, h.run("diff", "-o", "json", real, clone))

	assert.False(t, h.comparison().Diff.HasDifferences)
}

func TestDiff_IgnoreConfigNotAList(t *testing.T) {
	h := newHarness(t)
	config.Config = config.Type{Source: "apiparity.yaml", Data: map[string]interface{}{
		"ignore": "threadId",
	}}
	real := writeFile(t, "real.json", `{"id":"1","threadId":"a"}`)
	clone := writeFile(t, "clone.json", `{"id":"2","threadId":"b"}`)

	err := h.run("diff", "-o", "json", real, clone)

	assert.ErrorContains(t, err, "invalid ignore in apiparity.yaml")
	assert.Empty(t, h.stdout.String())
}

func TestDiff_EmptyIgnoreConfig(t *testing.T) {
	h := newHarness(t)
	config.Config = config.Type{Data: map[string]interface{}{
		"ignore": []interface{}{},
	}}
	real := writeFile(t, "real.json", `{"id":"1","n":1}`)
	clone := writeFile(t, "clone.json", `{"id":"1","n":2}`)

	require.NoError(t, h.run("diff", "-o", "json", real, clone))

	out := h.comparison()
	require.Len(t, out.Diff.Details, 1)
	assert.Equal(t, "n", out.Diff.Details[0].Path)
	require.Len(t, out.View.Real.Body.Children, 2)
	assert.Equal(t, "id", out.View.Real.Body.Children[0].Path)
	assert.Equal(t, "match", out.View.Real.Body.Children[0].Class)
}

func TestCall_InvalidCacheClean(t *testing.T) {
	h := newHarness(t)
	config.Config = config.Type{Source: "apiparity.yaml", Data: map[string]interface{}{
		"cache": map[string]interface{}{"clean": "soon"},
	}}
	real := jsonServer(t, http.StatusOK, `{"a":1}`)
	clone := jsonServer(t, http.StatusOK, `{"a":1}`)

	err := h.run("call", "--real", real.URL, "--clone", clone.URL, "/x")

	assert.ErrorContains(t, err, "invalid cache.clean in apiparity.yaml")
}
