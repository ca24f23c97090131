// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backend is the HTTP side of a dual call. A Client targets one
// deployment (real or clone) and turns a logical request into an HTTP
// exchange: path placeholders are substituted, query and JSON body encoded,
// an optional bearer token and rate limit applied. Every failure is folded
// into the returned Response so the pair always settles.
package backend
