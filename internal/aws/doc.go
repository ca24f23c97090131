// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws loads AWS SDK configuration and reads objects from S3. It backs
// catalogs and config-referenced documents addressed as s3://bucket/key.
package aws
