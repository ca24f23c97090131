// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller narrows a JSON body to the subtree addressed by a diff
// path such as labels[0].name. Paths are translated to gjson syntax, so
// [*] fans out across every element of an array.
package driller
