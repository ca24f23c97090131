// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"unicode/utf8"
)

// snippetLen bounds how much of an error body is echoed.
const snippetLen = 200

// ErrorContext carries input context for improving transport error messages.
type ErrorContext struct {
	Side      string // "real" or "clone"
	Host      string
	Operation string // e.g. "GET /users/{userId}/labels"
}

// friendlyError replaces the message of err while keeping it for
// errors.Is/As.
type friendlyError struct {
	msg string
	err error
}

func (e *friendlyError) Error() string { return e.msg }

func (e *friendlyError) Unwrap() error { return e.err }

// Friendly wraps a transport error with a short, contextual message while
// preserving the original error for errors.Is/As.
func Friendly(err error, ctx ErrorContext) error {
	if err == nil {
		return nil
	}

	host := nonEmpty(ctx.Host, "<unknown>")
	op := nonEmpty(ctx.Operation, "request")

	var dnsErr *net.DNSError
	var netErr net.Error

	var msg string
	switch {
	case errors.Is(err, context.Canceled):
		msg = fmt.Sprintf("%s on %s: cancelled", op, host)

	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		msg = fmt.Sprintf("%s on %s: %s timed out. Raise --timeout",
			op, host, nonEmpty(ctx.Side, "request"))

	case errors.As(err, &dnsErr):
		msg = fmt.Sprintf("%s: cannot resolve host %q", op, dnsErr.Name)

	case errors.Is(err, syscall.ECONNREFUSED):
		msg = fmt.Sprintf("%s on %s: connection refused. Is the %s deployment running?",
			op, host, nonEmpty(ctx.Side, "target"))

	default:
		return fmt.Errorf("%s on %s: %w", op, host, err)
	}

	return &friendlyError{msg: msg, err: err}
}

// StatusError describes a non-2xx response as "HTTP <code>: <snippet>". An
// empty body falls back to the status text.
func StatusError(code int, body []byte) error {
	return fmt.Errorf("HTTP %d: %s", code, snippet(body, http.StatusText(code)))
}

func snippet(body []byte, fallback string) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if s == "" {
		return nonEmpty(fallback, "no body")
	}
	if len(s) <= snippetLen {
		return s
	}
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
