// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output provides sorting, table rendering, color resolution and
// json/yaml emission used by commands to present results.
package output
