// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes a path-addressed structural diff between the
// response bodies of a reference ("real") and a candidate ("clone") API
// deployment. The result is a flat, pre-ordered list of records that the
// renderer queries point by point.
package differ
