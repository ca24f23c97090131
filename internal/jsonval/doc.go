// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package jsonval is a tagged, order-preserving JSON value used by the
// comparison engine and the renderer. Kind is an explicit enumeration so
// callers switch on it exhaustively instead of probing Go types.
package jsonval
