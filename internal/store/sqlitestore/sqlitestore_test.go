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

package sqlitestore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombiezen.com/go/headingfix/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Error(err)
		}
	})
	return s, path
}

func TestLocales(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	locales, err := s.Locales(ctx)
	require.NoError(t, err)
	assert.Empty(t, locales)

	require.NoError(t, s.AddLocale(ctx, "en-US", true))
	require.NoError(t, s.AddLocale(ctx, "fr-FR", false))
	require.NoError(t, s.AddLocale(ctx, "de-DE", false))
	require.NoError(t, s.AddLocale(ctx, "en-US", true))

	locales, err = s.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US", "fr-FR", "de-DE"}, locales)
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	require.NoError(t, s.Put(ctx, &store.Entry{
		ID:               "b",
		ContentType:      "hero",
		Version:          2,
		PublishedVersion: 1,
		Fields: map[string]map[string]any{
			"heading": {"en-US": "Hi", "fr-FR": "Salut"},
			"order":   {"en-US": 3},
		},
	}))
	require.NoError(t, s.Put(ctx, &store.Entry{ID: "a", ContentType: "hero", Version: 1}))
	require.NoError(t, s.Put(ctx, &store.Entry{ID: "c", ContentType: "article", Version: 1}))

	entries, err := s.Entries(ctx, "hero")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	b := entries[1]
	assert.Equal(t, "hero", b.ContentType)
	assert.Equal(t, 2, b.Version)
	assert.Equal(t, 1, b.PublishedVersion)
	assert.Equal(t, "Hi", b.Fields["heading"]["en-US"])
	assert.Equal(t, "Salut", b.Fields["heading"]["fr-FR"])
	assert.Equal(t, json.Number("3"), b.Fields["order"]["en-US"])

	_, err = s.Entry(ctx, "zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	require.NoError(t, s.Put(ctx, &store.Entry{
		ID:               "a",
		ContentType:      "hero",
		Version:          2,
		PublishedVersion: 1,
		Fields: map[string]map[string]any{
			"heading": {"en-US": "Hi"},
		},
	}))

	e, err := s.Entry(ctx, "a")
	require.NoError(t, err)
	e.SetValue("heading", "en-US", "<h1>Hi</h1>")
	require.NoError(t, s.Update(ctx, e, store.PublishPreserve))
	assert.Equal(t, 4, e.Version)
	assert.Equal(t, 3, e.PublishedVersion)

	got, err := s.Entry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", got.Fields["heading"]["en-US"])
	assert.Equal(t, 4, got.Version)
	assert.Equal(t, 3, got.PublishedVersion)
	assert.Equal(t, store.Published, got.State())

	stale := got.Clone()
	stale.Version = 2
	err = s.Update(ctx, stale, store.PublishNever)
	assert.ErrorIs(t, err, store.ErrVersionMismatch)

	err = s.Update(ctx, &store.Entry{ID: "zzz", Version: 1}, store.PublishNever)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.Entry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Version)
}

func TestUpdateWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	require.NoError(t, s.Put(ctx, &store.Entry{
		ID:               "a",
		ContentType:      "hero",
		Version:          2,
		PublishedVersion: 1,
		Fields: map[string]map[string]any{
			"heading": {"en-US": "Hi"},
		},
	}))
	_, err := s.db.ExecContext(ctx, `
		CREATE TRIGGER entries_read_only BEFORE UPDATE ON entries
		BEGIN
			SELECT RAISE(ABORT, 'entries are read-only');
		END
	`)
	require.NoError(t, err)

	e, err := s.Entry(ctx, "a")
	require.NoError(t, err)
	e.SetValue("heading", "en-US", "<h1>Hi</h1>")
	err = s.Update(ctx, e, store.PublishPreserve)
	assert.ErrorContains(t, err, "read-only")
	assert.Equal(t, 2, e.Version)
	assert.Equal(t, 1, e.PublishedVersion)

	got, err := s.Entry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, "Hi", got.Fields["heading"]["en-US"])
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)
	require.NoError(t, s.AddLocale(ctx, "en-US", true))
	require.NoError(t, s.Put(ctx, &store.Entry{ID: "a", ContentType: "hero", Version: 1}))

	// Opening again must not reapply migrations.
	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	locales, err := s2.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US"}, locales)
	e, err := s2.Entry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hero", e.ContentType)
}
