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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryState(t *testing.T) {
	tests := []struct {
		version          int
		publishedVersion int
		want             PublishState
	}{
		{version: 1, publishedVersion: 0, want: Draft},
		{version: 5, publishedVersion: 0, want: Draft},
		{version: 2, publishedVersion: 1, want: Published},
		{version: 7, publishedVersion: 6, want: Published},
		{version: 3, publishedVersion: 1, want: Changed},
	}
	for _, test := range tests {
		e := &Entry{Version: test.version, PublishedVersion: test.publishedVersion}
		assert.Equal(t, test.want, e.State(), "version=%d publishedVersion=%d", test.version, test.publishedVersion)
	}
}

func TestPublishStateString(t *testing.T) {
	assert.Equal(t, "draft", Draft.String())
	assert.Equal(t, "published", Published.String())
	assert.Equal(t, "changed", Changed.String())
	assert.Equal(t, "PublishState(0)", PublishState(0).String())
}

func TestParsePublishPolicy(t *testing.T) {
	for _, p := range []PublishPolicy{PublishPreserve, PublishNever, PublishAlways} {
		got, err := ParsePublishPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParsePublishPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PublishPreserve, got)

	_, err = ParsePublishPolicy("sometimes")
	assert.Error(t, err)
}

func TestEntryValue(t *testing.T) {
	e := new(Entry)
	_, ok := e.Value("heading", "en-US")
	assert.False(t, ok)

	e.SetValue("heading", "en-US", "<h1>Hi</h1>")
	v, ok := e.Value("heading", "en-US")
	assert.True(t, ok)
	assert.Equal(t, "<h1>Hi</h1>", v)
	_, ok = e.Value("heading", "de-DE")
	assert.False(t, ok)
}

func TestEntryClone(t *testing.T) {
	e := &Entry{
		ID:      "a",
		Version: 3,
		Fields: map[string]map[string]any{
			"heading": {"en-US": "Hi"},
		},
	}
	e2 := e.Clone()
	e2.SetValue("heading", "en-US", "Bye")
	e2.SetValue("title", "en-US", "New")
	e2.Version++

	assert.Equal(t, "Hi", e.Fields["heading"]["en-US"])
	assert.NotContains(t, e.Fields, "title")
	assert.Equal(t, 3, e.Version)
}

func TestApplyUpdate(t *testing.T) {
	tests := []struct {
		name                 string
		version              int
		publishedVersion     int
		policy               PublishPolicy
		wantVersion          int
		wantPublishedVersion int
		wantState            PublishState
	}{
		{
			name:                 "PreserveDraft",
			version:              1,
			policy:               PublishPreserve,
			wantVersion:          2,
			wantPublishedVersion: 0,
			wantState:            Draft,
		},
		{
			name:                 "PreservePublished",
			version:              2,
			publishedVersion:     1,
			policy:               PublishPreserve,
			wantVersion:          4,
			wantPublishedVersion: 3,
			wantState:            Published,
		},
		{
			name:                 "PreserveChanged",
			version:              4,
			publishedVersion:     2,
			policy:               PublishPreserve,
			wantVersion:          5,
			wantPublishedVersion: 2,
			wantState:            Changed,
		},
		{
			name:                 "NeverPublished",
			version:              2,
			publishedVersion:     1,
			policy:               PublishNever,
			wantVersion:          3,
			wantPublishedVersion: 1,
			wantState:            Changed,
		},
		{
			name:                 "AlwaysDraft",
			version:              1,
			policy:               PublishAlways,
			wantVersion:          3,
			wantPublishedVersion: 2,
			wantState:            Published,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			current := &Entry{
				ID:               "a",
				Version:          test.version,
				PublishedVersion: test.publishedVersion,
				Fields: map[string]map[string]any{
					"heading": {"en-US": "Hi"},
				},
			}
			update := current.Clone()
			update.SetValue("heading", "en-US", "<h1>Hi</h1>")
			readVersion, readPublishedVersion := update.Version, update.PublishedVersion

			require.NoError(t, ApplyUpdate(current, update, test.policy))
			assert.Equal(t, "<h1>Hi</h1>", current.Fields["heading"]["en-US"])
			assert.Equal(t, test.wantVersion, current.Version)
			assert.Equal(t, test.wantPublishedVersion, current.PublishedVersion)
			assert.Equal(t, test.wantState, current.State())
			assert.Equal(t, readVersion, update.Version)
			assert.Equal(t, readPublishedVersion, update.PublishedVersion)
			update.SetVersions(current)
			assert.Equal(t, current.Version, update.Version)
			assert.Equal(t, current.PublishedVersion, update.PublishedVersion)

			// Later changes to the update must not leak into the stored entry.
			update.SetValue("heading", "en-US", "changed")
			assert.Equal(t, "<h1>Hi</h1>", current.Fields["heading"]["en-US"])
		})
	}
}

func TestApplyUpdateVersionMismatch(t *testing.T) {
	current := &Entry{ID: "a", Version: 3}
	update := &Entry{ID: "a", Version: 2}
	err := ApplyUpdate(current, update, PublishAlways)
	assert.ErrorIs(t, err, ErrVersionMismatch)
	assert.Equal(t, 3, current.Version)
	assert.Equal(t, 0, current.PublishedVersion)
}
