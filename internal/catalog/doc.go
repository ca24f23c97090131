// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package catalog reads the endpoint catalog: a YAML document naming each
// endpoint with its HTTP method, path template, docs and parameter schema.
//
//	endpoints:
//	  - name: labels.list
//	    method: GET
//	    path: /gmail/v1/users/{userId}/labels
//	    docs: Lists all labels in the user's mailbox.
//	    params:
//	      - name: userId
//	        in: path
//	        default: me
//
// Catalogs load from a local path or from s3://bucket/key. Endpoint.Split
// turns name=value pairs into the path, query and body maps a dual call
// takes.
package catalog
