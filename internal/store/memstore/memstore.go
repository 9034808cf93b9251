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

// Package memstore provides an in-memory [store.Store].
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"zombiezen.com/go/headingfix/internal/store"
)

// Store is an in-memory content store.
type Store struct {
	mu      sync.Mutex
	locales []string
	entries map[string]*store.Entry
	updates int
}

var _ store.Store = (*Store)(nil)

// New returns a new store holding copies of the given entries.
func New(locales []string, entries ...*store.Entry) *Store {
	s := &Store{
		locales: append([]string(nil), locales...),
		entries: make(map[string]*store.Entry, len(entries)),
	}
	for _, e := range entries {
		s.entries[e.ID] = e.Clone()
	}
	return s
}

// Locales returns the store's locales.
func (s *Store) Locales(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locales...), nil
}

// Entries returns copies of the entries of the given content type
// ordered by ID.
func (s *Store) Entries(ctx context.Context, contentType string) ([]*store.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*store.Entry
	for _, e := range s.entries {
		if e.ContentType == contentType {
			result = append(result, e.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Update saves an entry.
func (s *Store) Update(ctx context.Context, e *store.Entry, policy store.PublishPolicy) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.entries[e.ID]
	if stored == nil {
		return fmt.Errorf("update %s: %w", e.ID, store.ErrNotFound)
	}
	current := stored.Clone()
	if err := store.ApplyUpdate(current, e, policy); err != nil {
		return err
	}
	s.entries[e.ID] = current
	e.SetVersions(current)
	s.updates++
	return nil
}

// Entry returns a copy of the entry with the given ID or nil if not found.
func (s *Store) Entry(id string) *store.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[id]
	if e == nil {
		return nil
	}
	return e.Clone()
}

// Updates returns the number of successful updates.
func (s *Store) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}
