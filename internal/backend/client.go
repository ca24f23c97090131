// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"

	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/jsonval"
)

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// Client calls one deployment.
type Client struct {
	Name    string
	BaseURL *url.URL
	Token   string

	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.Token = token
	}
}

// WithRate limits the client to rps requests per second. Zero or less means
// unlimited.
func WithRate(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout bounds each request. Zero leaves the client without a timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a Client for the deployment at baseURL. name labels the side in
// log and error messages.
func New(name, baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base URL is required", name)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base URL %q: %w", name, baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: base URL %q must be http or https", name, baseURL)
	}

	c := &Client{
		Name:    name,
		BaseURL: u,
		http:    cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Call implements dual.Caller. It never returns an error; every failure is
// reported in the Response.
func (c *Client) Call(ctx context.Context, req dual.Request) (dual.Response, error) {
	start := time.Now()
	fail := func(err error) (dual.Response, error) {
		log.Debugf("%s: %s %s: %v", c.Name, req.Method, req.Endpoint, err)
		return dual.Failed(err.Error(), time.Since(start)), nil
	}

	target, err := c.URL(req.Endpoint, req.PathParams, req.QueryParams)
	if err != nil {
		return fail(err)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.BodyParams) > 0 {
		b, err := json.Marshal(req.BodyParams)
		if err != nil {
			return fail(fmt.Errorf("failed to encode request body: %w", err))
		}
		body = bytes.NewReader(b)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail(fmt.Errorf("rate limit %s: %w", c.Name, err))
		}
	}

	hreq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		hreq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	log.Debugf("%s: %s %s", c.Name, method, target)

	resp, err := c.http.Do(hreq)
	if err != nil {
		return fail(Friendly(err, ErrorContext{
			Side:      c.Name,
			Host:      c.BaseURL.Host,
			Operation: method + " " + req.Endpoint,
		}))
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(io.LimitReader(resp.Body, maxBody)); err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(StatusError(resp.StatusCode, doc.Bytes()))
	}

	value, err := jsonval.Parse(doc.Bytes())
	if err != nil {
		return fail(fmt.Errorf("invalid JSON in response (HTTP %d)", resp.StatusCode))
	}

	return dual.OK(resp.StatusCode, value, time.Since(start)), nil
}

// URL resolves endpoint against the base URL. Every {name} placeholder must
// have a path parameter; values are path-escaped.
func (c *Client) URL(endpoint string, pathParams, queryParams map[string]string) (string, error) {
	path, err := Substitute(endpoint, pathParams)
	if err != nil {
		return "", err
	}

	base := *c.BaseURL
	base.RawQuery = ""
	base.Fragment = ""
	u, err := url.Parse(strings.TrimSuffix(base.String(), "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	if len(queryParams) > 0 {
		q := u.Query()
		for k, v := range queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Substitute replaces {name} placeholders in endpoint with path-escaped
// values from params.
func Substitute(endpoint string, params map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(endpoint, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved path parameter(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}
