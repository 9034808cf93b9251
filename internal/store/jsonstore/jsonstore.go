// Copyright 2026 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package jsonstore provides a [store.Store] backed by a content export file.
//
// The file layout follows the export format of headless content platforms:
//
//	{
//	  "locales": [{"code": "en-US", "default": true}],
//	  "entries": [{
//	    "sys": {
//	      "id": "hero1",
//	      "contentType": {"sys": {"id": "heroBannerFullImageBanking"}},
//	      "version": 4,
//	      "publishedVersion": 3
//	    },
//	    "fields": {"heading": {"en-US": "<h1>Title</h1>"}}
//	  }]
//	}
//
// Keys the store does not understand are written back unchanged.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"zombiezen.com/go/headingfix/internal/store"
)

// Store is a content store backed by an export file.
// Updates are held in memory until [Store.Flush] is called.
type Store struct {
	path string

	mu      sync.Mutex
	top     map[string]json.RawMessage
	locales []exportLocale
	entries []exportEntry
	index   map[string]int
	dirty   bool
}

var _ store.Store = (*Store)(nil)

type exportLocale struct {
	Code    string `json:"code"`
	Default bool   `json:"default,omitempty"`
}

type exportEntry struct {
	Sys    map[string]any
	Fields map[string]map[string]any
	// extra holds the entry's other keys, such as "metadata".
	extra map[string]json.RawMessage
}

func (ee *exportEntry) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := unmarshal(data, &m); err != nil {
		return err
	}
	if raw := m["sys"]; raw != nil {
		if err := unmarshal(raw, &ee.Sys); err != nil {
			return fmt.Errorf("sys: %w", err)
		}
	}
	if raw := m["fields"]; raw != nil {
		if err := unmarshal(raw, &ee.Fields); err != nil {
			return fmt.Errorf("fields: %w", err)
		}
	}
	delete(m, "sys")
	delete(m, "fields")
	ee.extra = m
	return nil
}

func (ee exportEntry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(ee.extra)+2)
	for k, v := range ee.extra {
		m[k] = v
	}
	m["sys"] = ee.Sys
	m["fields"] = ee.Fields
	return json.Marshal(m)
}

// Open reads the export file at path.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open content export: %w", err)
	}
	s := &Store{
		path:  path,
		index: make(map[string]int),
	}
	if err := s.decode(data); err != nil {
		return nil, fmt.Errorf("open content export %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) decode(data []byte) error {
	if err := unmarshal(data, &s.top); err != nil {
		return err
	}
	if s.top == nil {
		return errors.New("not a JSON object")
	}
	if raw := s.top["locales"]; raw != nil {
		if err := unmarshal(raw, &s.locales); err != nil {
			return fmt.Errorf("locales: %w", err)
		}
	}
	if raw := s.top["entries"]; raw != nil {
		if err := unmarshal(raw, &s.entries); err != nil {
			return fmt.Errorf("entries: %w", err)
		}
	}
	for i := range s.entries {
		id, _ := s.entries[i].Sys["id"].(string)
		if id == "" {
			return fmt.Errorf("entries[%d]: missing sys.id", i)
		}
		if _, dup := s.index[id]; dup {
			return fmt.Errorf("entries[%d]: duplicate id %q", i, id)
		}
		s.index[id] = i
	}
	return nil
}

// unmarshal decodes JSON, keeping numbers as [json.Number]
// so that field values round-trip exactly.
func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Locales returns the export's locale codes in file order.
func (s *Store) Locales(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.locales))
	for _, l := range s.locales {
		codes = append(codes, l.Code)
	}
	return codes, nil
}

// DefaultLocale returns the code of the export's default locale
// or the empty string if none is marked as default.
func (s *Store) DefaultLocale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.locales {
		if l.Default {
			return l.Code
		}
	}
	return ""
}

// Entries returns copies of the entries of the given content type
// in file order.
func (s *Store) Entries(ctx context.Context, contentType string) ([]*store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*store.Entry
	for i := range s.entries {
		e, err := s.entries[i].toEntry()
		if err != nil {
			return nil, fmt.Errorf("list %s entries: %w", contentType, err)
		}
		if e.ContentType == contentType {
			result = append(result, e)
		}
	}
	return result, nil
}

// Update applies an update in memory.
func (s *Store) Update(ctx context.Context, e *store.Entry, policy store.PublishPolicy) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[e.ID]
	if !ok {
		return fmt.Errorf("update %s: %w", e.ID, store.ErrNotFound)
	}
	current, err := s.entries[i].toEntry()
	if err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	if err := store.ApplyUpdate(current, e, policy); err != nil {
		return err
	}
	s.entries[i].Fields = current.Fields
	s.entries[i].Sys["version"] = current.Version
	if current.PublishedVersion > 0 {
		s.entries[i].Sys["publishedVersion"] = current.PublishedVersion
	}
	s.dirty = true
	e.SetVersions(current)
	return nil
}

// Flush writes pending updates back to the export file.
// The file is replaced atomically.
// Flush is a no-op if there are no pending updates.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	entries, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("write content export: %w", err)
	}
	s.top["entries"] = entries
	data, err := json.MarshalIndent(s.top, "", "  ")
	if err != nil {
		return fmt.Errorf("write content export: %w", err)
	}
	data = append(data, '\n')

	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write content export: %w", err)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("write content export: %w", err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("write content export: %w", err)
	}
	s.dirty = false
	return nil
}

func (ee *exportEntry) toEntry() (*store.Entry, error) {
	id, _ := ee.Sys["id"].(string)
	e := &store.Entry{
		ID:          id,
		ContentType: linkID(ee.Sys["contentType"]),
		Fields:      ee.Fields,
	}
	var err error
	if e.Version, err = intValue(ee.Sys["version"]); err != nil {
		return nil, fmt.Errorf("entry %s: version: %w", id, err)
	}
	if e.PublishedVersion, err = intValue(ee.Sys["publishedVersion"]); err != nil {
		return nil, fmt.Errorf("entry %s: publishedVersion: %w", id, err)
	}
	return e.Clone(), nil
}

// linkID returns the ID of a link object like {"sys": {"id": "..."}}.
func linkID(v any) string {
	link, _ := v.(map[string]any)
	sys, _ := link["sys"].(map[string]any)
	id, _ := sys["id"].(string)
	return id
}

func intValue(v any) (int, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
