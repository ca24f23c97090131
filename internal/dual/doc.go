// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dual runs one logical request against the real and clone
// deployments concurrently and joins on both. A failing side is recorded in
// its own Response and never fails the pair; only orchestration problems
// (a missing caller, a caller refusing the request, a dead context) surface
// as errors.
package dual
