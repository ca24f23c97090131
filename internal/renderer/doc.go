// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package renderer turns a diff and the two responses into a comparison view.
// Each side's body is walked on its own and every node is classified by point
// lookups into the flat diff record list:
//
//	match     the node agrees with the other side
//	mismatch  the node differs, or sits directly under a type mismatch
//	ignored   the node is an identifier field expected to differ
//	none      the documents do not differ at all
//
// The view is plain data. Text writes it for a terminal using lipgloss.
package renderer
