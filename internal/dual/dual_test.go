// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package dual

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/jsonval"
)

func sleeper(d time.Duration, body string, done *atomic.Bool) Caller {
	return CallerFunc(func(ctx context.Context, req Request) (Response, error) {
		start := time.Now()
		time.Sleep(d)
		done.Store(true)
		return OK(200, jsonval.MustParse(body), time.Since(start)), nil
	})
}

func TestExecuteDual_JoinsBothSides(t *testing.T) {
	var realDone, cloneDone atomic.Bool
	e := New(
		sleeper(10*time.Millisecond, `{"a":1}`, &realDone),
		sleeper(100*time.Millisecond, `{"a":2}`, &cloneDone),
	)

	r, err := e.ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, realDone.Load())
	assert.True(t, cloneDone.Load())
	assert.GreaterOrEqual(t, r.DualDuration, int64(100))
	assert.GreaterOrEqual(t, r.DualDuration, r.Real.ResponseTime)
	assert.GreaterOrEqual(t, r.DualDuration, r.Clone.ResponseTime)
	require.NotNil(t, r.Real.Status)
	assert.Equal(t, 200, *r.Real.Status)
}

func TestExecuteDual_RunsConcurrently(t *testing.T) {
	var a, b atomic.Bool
	e := New(
		sleeper(100*time.Millisecond, `1`, &a),
		sleeper(100*time.Millisecond, `1`, &b),
	)

	r, err := e.ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	require.NoError(t, err)
	assert.Less(t, r.DualDuration, int64(190), "calls must not run back to back")
}

func TestExecuteDual_SameParamsBothSides(t *testing.T) {
	var seen [2]Request
	capture := func(i int) Caller {
		return CallerFunc(func(_ context.Context, req Request) (Response, error) {
			seen[i] = req
			return OK(200, jsonval.Value{}, 0), nil
		})
	}

	e := New(capture(0), capture(1))
	_, err := e.ExecuteDual(context.Background(), "/users/{userId}/messages", "POST",
		map[string]string{"userId": "me"},
		map[string]string{"q": "x"},
		map[string]any{"raw": "abc"})
	require.NoError(t, err)

	assert.Equal(t, seen[0], seen[1])
	assert.Equal(t, "me", seen[0].PathParams["userId"])
	assert.Equal(t, "POST", seen[0].Method)
}

func TestExecuteDual_SideFailureIsCaptured(t *testing.T) {
	failing := CallerFunc(func(context.Context, Request) (Response, error) {
		return Failed("connection refused", 0), nil
	})
	ok := CallerFunc(func(context.Context, Request) (Response, error) {
		return OK(200, jsonval.MustParse(`{"a":1}`), 0), nil
	})

	r, err := New(failing, ok).ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	require.NoError(t, err)

	assert.Nil(t, r.Real.Status)
	require.NotNil(t, r.Real.Error)
	assert.Equal(t, "connection refused", *r.Real.Error)

	d := r.Diff()
	require.Len(t, d.Details, 1)
	assert.Equal(t, differ.MissingResponse, d.Details[0].Type)
	assert.Equal(t, "Real response is missing", d.Details[0].Message)
}

func TestExecuteDual_OrchestrationFailure(t *testing.T) {
	boom := CallerFunc(func(context.Context, Request) (Response, error) {
		return Response{}, errors.New("boom")
	})
	var done atomic.Bool
	slow := sleeper(20*time.Millisecond, `1`, &done)

	_, err := New(slow, boom).ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dual execution failed")
	assert.Contains(t, err.Error(), "clone: boom")
	assert.True(t, done.Load(), "the other side still settles")
}

func TestExecuteDual_MissingCaller(t *testing.T) {
	_, err := New(nil, nil).ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	assert.ErrorContains(t, err, "dual execution failed")

	var e *Executor
	_, err = e.ExecuteDual(context.Background(), "/x", "GET", nil, nil, nil)
	assert.Error(t, err)
}

func TestExecuteDual_CancelledContext(t *testing.T) {
	var called atomic.Int32
	c := CallerFunc(func(context.Context, Request) (Response, error) {
		called.Add(1)
		return Response{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(c, c).ExecuteDual(ctx, "/x", "GET", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), called.Load())
}

func TestResult_JSONShape(t *testing.T) {
	r := Result{
		Real:         OK(200, jsonval.MustParse(`{"a":1}`), 12*time.Millisecond),
		Clone:        Failed("HTTP 500: oops", 3*time.Millisecond),
		DualDuration: 13,
	}

	out, err := json.Marshal(r)
	require.NoError(t, err)

	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &back))
	real := back["real"].(map[string]interface{})
	clone := back["clone"].(map[string]interface{})

	assert.Equal(t, float64(200), real["status"])
	assert.Nil(t, real["error"])
	assert.Equal(t, float64(12), real["responseTime"])
	assert.Nil(t, clone["status"])
	assert.NotContains(t, clone, "body")
	assert.Equal(t, "HTTP 500: oops", clone["error"])
	assert.Equal(t, float64(13), back["dualDuration"])
}

func TestResult_RoundTripKeepsBodies(t *testing.T) {
	in := Result{
		Real:  OK(200, jsonval.MustParse(`{"b":1,"a":2}`), 0),
		Clone: OK(200, jsonval.MustParse(`[]`), 0),
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Result
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, []string{"b", "a"}, out.Real.Body.Keys())
	assert.Equal(t, jsonval.Array, out.Clone.Body.Kind())
	assert.True(t, out.Real.Body.Equal(in.Real.Body))
}

func TestResult_RoundTripKeepsAbsentBody(t *testing.T) {
	in := Result{
		Real:  OK(200, jsonval.MustParse(`{"a":1}`), 0),
		Clone: Failed("HTTP 500: oops", time.Millisecond),
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Result
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, jsonval.Undefined, out.Clone.Body.Kind())
	require.NotNil(t, out.Clone.Error)
	assert.Equal(t, "HTTP 500: oops", *out.Clone.Error)
	assert.Nil(t, out.Clone.Status)

	diff := out.Diff()
	require.Len(t, diff.Details, 1)
	assert.Equal(t, differ.MissingResponse, diff.Details[0].Type)
}

func TestResponse_RoundTripKeepsNullBody(t *testing.T) {
	raw, err := json.Marshal(OK(200, jsonval.NewNull(), 0))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"body":null`)

	var out Response
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, jsonval.Null, out.Body.Kind())
}
