// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for apiparity's user
// configuration. The configuration is a YAML document located in the user's
// configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/apiparity.yaml or $HOME/.config/apiparity.yaml
//   - Windows: %APPDATA%/apiparity.yaml
//
// APIPARITY_CFG_FILE overrides the location. A minimal document:
//
//	backends:
//	  real:
//	    url: https://gmail.googleapis.com
//	    token: ${REAL_TOKEN}
//	  clone:
//	    url: http://localhost:8080
//	    rate: 5
//	catalog: ~/.config/apiparity/endpoints.yaml
//	ignore: [id, threadId, "*.etag"]
package config
