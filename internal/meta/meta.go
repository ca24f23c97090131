// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"io"

	"github.com/staranto/apiparity/internal/cacheutil"
	"github.com/staranto/apiparity/internal/config"
)

// Meta contains runtime state shared by commands: the arguments, loaded
// configuration, context, response store and where output goes.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	Store   *cacheutil.Store
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}
