// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package cacheutil is the on-disk response store. A Store keeps the latest
// dual result for each request under a SHA-256 file name so a comparison can
// be replayed offline. It is an explicit value handed to whoever needs it;
// nothing here is process-wide state.
//
// The base directory is APIPARITY_CACHE_DIR, or os.UserCacheDir()/apiparity.
// APIPARITY_CACHE=0 or false disables the store.
package cacheutil
