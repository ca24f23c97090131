// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/apiparity/internal/differ"
	"github.com/staranto/apiparity/internal/jsonval"
)

// Request is one logical call. The three parameter maps are disjoint.
type Request struct {
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	PathParams  map[string]string `json:"pathParams,omitempty"`
	QueryParams map[string]string `json:"queryParams,omitempty"`
	BodyParams  map[string]any    `json:"bodyParams,omitempty"`
}

// Response is what one backend produced. Error non-nil implies Status nil.
type Response struct {
	Status       *int          `json:"status"`
	Body         jsonval.Value `json:"body"`
	Error        *string       `json:"error"`
	ResponseTime int64         `json:"responseTime"`
}

// OK builds a successful Response.
func OK(status int, body jsonval.Value, elapsed time.Duration) Response {
	return Response{
		Status:       &status,
		Body:         body,
		ResponseTime: elapsed.Milliseconds(),
	}
}

// responseJSON is the wire form of Response. Body is omitted when the side
// produced none so that it decodes back to Undefined rather than null.
type responseJSON struct {
	Status       *int            `json:"status"`
	Body         json.RawMessage `json:"body,omitempty"`
	Error        *string         `json:"error"`
	ResponseTime int64           `json:"responseTime"`
}

// MarshalJSON writes the response, leaving out an absent body.
func (r Response) MarshalJSON() ([]byte, error) {
	w := responseJSON{
		Status:       r.Status,
		Error:        r.Error,
		ResponseTime: r.ResponseTime,
	}
	if r.Body.Kind() != jsonval.Undefined {
		b, err := r.Body.MarshalJSON()
		if err != nil {
			return nil, err
		}
		w.Body = b
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a response. A missing body key stays Undefined; an
// explicit null is kept as Null.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w responseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = Response{
		Status:       w.Status,
		Error:        w.Error,
		ResponseTime: w.ResponseTime,
	}
	if len(w.Body) > 0 {
		body, err := jsonval.Parse(w.Body)
		if err != nil {
			return fmt.Errorf("invalid body: %w", err)
		}
		r.Body = body
	}
	return nil
}

// Failed builds a Response carrying only an error message.
func Failed(msg string, elapsed time.Duration) Response {
	return Response{
		Error:        &msg,
		ResponseTime: elapsed.Milliseconds(),
	}
}

// Result pairs both sides with the wall-clock time for the pair.
type Result struct {
	Request      Request  `json:"request"`
	Real         Response `json:"real"`
	Clone        Response `json:"clone"`
	DualDuration int64    `json:"dualDuration"`
}

// Diff compares the two bodies. Errors are not inspected: a failed side has
// no body and therefore shows up as a missing response.
func (r *Result) Diff(opts ...differ.Option) *differ.Result {
	return differ.GenerateDiff(r.Real.Body, r.Clone.Body, opts...)
}

// Caller executes a request against one backend. Per-call failures belong in
// the returned Response; a non-nil error means the caller could not take the
// request at all.
type Caller interface {
	Call(ctx context.Context, req Request) (Response, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, req Request) (Response, error)

// Call implements Caller.
func (f CallerFunc) Call(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Executor holds the two backends.
type Executor struct {
	Real  Caller
	Clone Caller
}

// New returns an Executor over real and clone.
func New(real, clone Caller) *Executor {
	return &Executor{Real: real, Clone: clone}
}

// ExecuteDual issues the request to both backends at once and returns when
// both have settled.
func (e *Executor) ExecuteDual(ctx context.Context, endpoint, method string,
	pathParams, queryParams map[string]string, bodyParams map[string]any) (*Result, error) {

	req := Request{
		Endpoint:    endpoint,
		Method:      method,
		PathParams:  pathParams,
		QueryParams: queryParams,
		BodyParams:  bodyParams,
	}

	if e == nil || e.Real == nil || e.Clone == nil {
		return nil, fmt.Errorf("dual execution failed: %w", errors.New("both real and clone callers are required"))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dual execution failed: %w", err)
	}

	log.Debugf("dual: %s %s", method, endpoint)

	result := &Result{Request: req}
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		resp, err := e.Real.Call(ctx, req)
		if err != nil {
			return fmt.Errorf("real: %w", err)
		}
		result.Real = resp
		return nil
	})
	g.Go(func() error {
		resp, err := e.Clone.Call(ctx, req)
		if err != nil {
			return fmt.Errorf("clone: %w", err)
		}
		result.Clone = resp
		return nil
	})

	err := g.Wait()
	result.DualDuration = time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("dual execution failed: %w", err)
	}

	log.Debugf("dual: settled in %dms (real %dms, clone %dms)",
		result.DualDuration, result.Real.ResponseTime, result.Clone.ResponseTime)
	return result, nil
}
