// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/staranto/apiparity/internal/dual"
	"github.com/staranto/apiparity/internal/log"
)

// responses is the subdirectory holding stored dual results.
const responses = "responses"

// Entry represents a stored artifact on disk. Key is the clear-text key;
// EncodedKey is the hashed file name.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Data       []byte
}

// Store reads and writes entries beneath one base directory. The zero Store
// is disabled.
type Store struct {
	base    string
	enabled bool
}

// Dir resolves the base directory. APIPARITY_CACHE_DIR wins when set and
// non-empty, then os.UserCacheDir()/apiparity. Returns ("", false) when
// neither resolves.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("APIPARITY_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "apiparity"), true
	}
	return "", false
}

// Enabled returns true unless APIPARITY_CACHE is "0" or "false".
func Enabled() bool {
	enabled, _ := os.LookupEnv("APIPARITY_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// NewStore returns a Store configured from the environment.
func NewStore() *Store {
	if !Enabled() {
		return &Store{}
	}
	base, ok := Dir()
	return &Store{base: base, enabled: ok}
}

// NewStoreAt returns an enabled Store rooted at base.
func NewStoreAt(base string) *Store {
	return &Store{base: base, enabled: base != ""}
}

// Enabled reports whether s reads and writes anything.
func (s *Store) Enabled() bool {
	return s != nil && s.enabled
}

// Base is the store's base directory.
func (s *Store) Base() string {
	if s == nil {
		return ""
	}
	return s.base
}

// EntryPath returns where the entry for clearKey beneath subdirs lives and
// whether a file exists there.
func (s *Store) EntryPath(subdirs []string, clearKey string) (string, bool) {
	if !s.Enabled() {
		return "", false
	}
	p := filepath.Join(append([]string{s.base}, append(subdirs, encodeKey(clearKey))...)...)
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Read returns the entry for clearKey, if present.
func (s *Store) Read(subdirs []string, clearKey string) (*Entry, bool) {
	p, ok := s.EntryPath(subdirs, clearKey)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	log.Debugf("store hit: key=%s", clearKey)
	return &Entry{
		Key:        clearKey,
		EncodedKey: encodeKey(clearKey),
		Path:       p,
		Data:       bytes.TrimSpace(b),
	}, true
}

// Write stores data for clearKey beneath subdirs, creating directories as
// needed. A disabled store ignores writes.
func (s *Store) Write(subdirs []string, clearKey string, data []byte) error {
	if !s.Enabled() {
		return nil
	}
	dir := filepath.Join(append([]string{s.base}, subdirs...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	p := filepath.Join(dir, encodeKey(clearKey))
	if err := os.WriteFile(p, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to store: %w", err)
	}
	log.Debugf("store write: key=%s", clearKey)
	return nil
}

// Purge removes files older than hours. hours <= 0 disables purging.
func (s *Store) Purge(hours int) error {
	if hours <= 0 {
		log.Debug("store cleaning disabled")
		return nil
	}
	if !s.Enabled() {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	err := filepath.Walk(s.base, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if info == nil {
			return nil
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed stored file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove stored file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge store: %w", err)
	}
	return nil
}

// RequestKey is the clear-text key for req against the given scope (usually
// the two base URLs). Parameter maps marshal with sorted keys, so equal
// requests always produce equal keys.
func RequestKey(scope string, req dual.Request) string {
	params, _ := json.Marshal(struct {
		Path  map[string]string `json:"path"`
		Query map[string]string `json:"query"`
		Body  map[string]any    `json:"body"`
	}{req.PathParams, req.QueryParams, req.BodyParams})

	return strings.Join([]string{scope, strings.ToUpper(req.Method), req.Endpoint, string(params)}, "\n")
}

// SaveResult stores r under its request.
func (s *Store) SaveResult(scope string, r *dual.Result) error {
	if !s.Enabled() || r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return s.Write([]string{responses}, RequestKey(scope, r.Request), data)
}

// LoadResult returns the stored result for req, if any.
func (s *Store) LoadResult(scope string, req dual.Request) (*dual.Result, bool, error) {
	entry, ok := s.Read([]string{responses}, RequestKey(scope, req))
	if !ok {
		return nil, false, nil
	}
	var r dual.Result
	if err := json.Unmarshal(entry.Data, &r); err != nil {
		return nil, false, fmt.Errorf("corrupt stored result %s: %w", entry.Path, err)
	}
	return &r, true, nil
}

// encodeKey returns the hex SHA-256 of input.
func encodeKey(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}
