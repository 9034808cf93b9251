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

package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombiezen.com/go/headingfix/internal/store"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	original := &store.Entry{
		ID:          "b",
		ContentType: "hero",
		Version:     1,
		Fields: map[string]map[string]any{
			"heading": {"en-US": "Hi"},
		},
	}
	s := New([]string{"en-US"},
		original,
		&store.Entry{ID: "a", ContentType: "hero", Version: 1},
		&store.Entry{ID: "c", ContentType: "article", Version: 1},
	)
	original.SetValue("heading", "en-US", "mutated")

	locales, err := s.Locales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US"}, locales)

	entries, err := s.Entries(ctx, "hero")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, "Hi", entries[1].Fields["heading"]["en-US"])

	e := entries[1]
	e.SetValue("heading", "en-US", "<h1>Hi</h1>")
	require.NoError(t, s.Update(ctx, e, store.PublishNever))
	assert.Equal(t, 2, e.Version)
	assert.Equal(t, "<h1>Hi</h1>", s.Entry("b").Fields["heading"]["en-US"])
	assert.Equal(t, 1, s.Updates())

	stale := &store.Entry{ID: "b", Version: 1}
	err = s.Update(ctx, stale, store.PublishNever)
	assert.ErrorIs(t, err, store.ErrVersionMismatch)
	assert.Equal(t, 1, stale.Version)
	err = s.Update(ctx, &store.Entry{ID: "zzz", Version: 1}, store.PublishNever)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, s.Entry("zzz"))
	assert.Equal(t, 1, s.Updates())
}
