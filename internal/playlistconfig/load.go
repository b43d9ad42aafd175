/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playlistconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Parse decodes a playlist configuration document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and decodes the configuration file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist config: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse playlist config %s: %w", path, err)
	}
	return doc, nil
}

// Discover lists the *.json files directly inside dir in lexical order,
// skipping hidden files.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read playlist data dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Dir loads link targets relative to a configuration root.
type Dir struct {
	Root string
}

// Resolve returns the absolute path a link refers to. Relative links are
// taken from Root.
func (d Dir) Resolve(link string) string {
	if filepath.IsAbs(link) {
		return filepath.Clean(link)
	}
	return Key(filepath.Join(d.Root, link))
}

// Key returns the absolute, cleaned form of path. Files reached by
// different spellings of the same path share one key.
func Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Load reads the document a link refers to.
func (d Dir) Load(link string) (*Document, error) {
	return Load(d.Resolve(link))
}
