// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"

	"github.com/staranto/apiparity/internal/aws"
)

// Parameter locations.
const (
	InPath  = "path"
	InQuery = "query"
	InBody  = "body"
)

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// Param describes one endpoint parameter.
type Param struct {
	Name        string `yaml:"name" json:"name"`
	In          string `yaml:"in" json:"in"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Endpoint is one catalog entry.
type Endpoint struct {
	Name   string  `yaml:"name" json:"name"`
	Method string  `yaml:"method" json:"method"`
	Path   string  `yaml:"path" json:"path"`
	Docs   string  `yaml:"docs,omitempty" json:"docs,omitempty"`
	Params []Param `yaml:"params,omitempty" json:"params,omitempty"`

	// adHoc endpoints have no schema; parameters are routed by name and
	// method instead of validated.
	adHoc bool
}

// Catalog is a loaded endpoint catalog.
type Catalog struct {
	Source    string     `yaml:"-" json:"source"`
	Endpoints []Endpoint `yaml:"endpoints" json:"endpoints"`
}

// Load reads a catalog from a local path or an s3:// URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	if source == "" {
		return nil, fmt.Errorf("no catalog configured. Set --catalog or the catalog key in the config file")
	}

	var data []byte
	var err error
	if aws.IsS3URL(source) {
		data, err = aws.Fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", source, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", source, err)
	}
	c.Source = source

	log.Debugf("catalog: %d endpoint(s) from %s", len(c.Endpoints), source)
	return c, nil
}

// Parse decodes and normalizes a catalog document. Methods are upper-cased
// and default to GET, parameter types default to string, and path
// placeholders without a declared parameter become required path params.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(c.Endpoints))
	for i := range c.Endpoints {
		e := &c.Endpoints[i]
		if e.Name == "" {
			return nil, fmt.Errorf("endpoint %d has no name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate endpoint %q", e.Name)
		}
		seen[e.Name] = true

		if err := e.normalize(); err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", e.Name, err)
		}
	}

	return &c, nil
}

func (e *Endpoint) normalize() error {
	if e.Path == "" {
		return fmt.Errorf("path is required")
	}

	e.Method = strings.ToUpper(e.Method)
	if e.Method == "" {
		e.Method = http.MethodGet
	}

	declared := make(map[string]bool, len(e.Params))
	for i := range e.Params {
		p := &e.Params[i]
		if p.In == "" {
			p.In = InQuery
		}
		switch p.In {
		case InPath, InQuery, InBody:
		default:
			return fmt.Errorf("param %q: in must be path, query or body, not %q", p.Name, p.In)
		}
		if p.Type == "" {
			p.Type = "string"
		}
		if _, ok := coercers[p.Type]; !ok {
			return fmt.Errorf("param %q: unknown type %q", p.Name, p.Type)
		}
		declared[p.Name] = true
	}

	for _, name := range Placeholders(e.Path) {
		if !declared[name] {
			e.Params = append(e.Params, Param{Name: name, In: InPath, Type: "string", Required: true})
		}
	}
	return nil
}

// Lookup returns the endpoint called name.
func (c *Catalog) Lookup(name string) (Endpoint, bool) {
	for _, e := range c.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return Endpoint{}, false
}

// Names returns endpoint names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Placeholders returns the {name} placeholders of a path template in order.
func Placeholders(path string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(path, -1) {
		names = append(names, m[1])
	}
	return names
}

// AdHoc builds a schema-less endpoint for a raw method and path. Placeholders
// are path params; other params go to the query for GET, DELETE and HEAD and
// to the body otherwise.
func AdHoc(method, path string) Endpoint {
	e := Endpoint{Method: method, Path: path, adHoc: true}
	if err := e.normalize(); err != nil {
		log.Debugf("ad hoc endpoint: %v", err)
	}
	e.Name = e.Method + " " + path
	return e
}

// IsAdHoc reports whether e came from AdHoc.
func (e Endpoint) IsAdHoc() bool { return e.adHoc }

// Param returns the parameter called name.
func (e Endpoint) Param(name string) (Param, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
