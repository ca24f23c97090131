// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the CLI command set for apiparity: call, diff,
// endpoints and completion. It wires flags, config-file value sources,
// validators and actions, and renders comparisons in the chosen output
// format.
package command
