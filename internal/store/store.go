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

// Package store defines the content store that heading migrations read from
// and write back to.
//
// Entries follow the versioning model of headless content platforms:
// every save increments an entry's version,
// and publishing records the version that was published.
// An entry is published and up to date
// when its version is exactly one past its published version.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrVersionMismatch is returned when an entry was modified
	// after it was read.
	ErrVersionMismatch = errors.New("entry version mismatch")
)

// Store is a content store.
// Implementations must be safe to call from multiple goroutines.
type Store interface {
	// Locales returns the codes of the locales the store holds values for.
	Locales(ctx context.Context) ([]string, error)
	// Entries returns copies of every entry of the given content type.
	Entries(ctx context.Context, contentType string) ([]*Entry, error)
	// Update saves e's fields and applies the publish policy.
	// e.Version must match the stored version.
	// On success, e's version fields are updated to the stored values.
	// On failure, e is left unchanged.
	Update(ctx context.Context, e *Entry, policy PublishPolicy) error
}

// Entry is a single content entry.
type Entry struct {
	ID          string
	ContentType string
	// Version is incremented on every save or publish.
	Version int
	// PublishedVersion is the version that was last published,
	// or zero if the entry has never been published.
	PublishedVersion int
	// Fields maps field IDs to locale codes to values.
	// Values are decoded JSON: strings, numbers, maps, and so on.
	Fields map[string]map[string]any
}

// Value returns the value of the given field in the given locale.
func (e *Entry) Value(field, locale string) (any, bool) {
	v, ok := e.Fields[field][locale]
	return v, ok
}

// SetValue sets the value of the given field in the given locale.
func (e *Entry) SetValue(field, locale string, v any) {
	if e.Fields == nil {
		e.Fields = make(map[string]map[string]any)
	}
	if e.Fields[field] == nil {
		e.Fields[field] = make(map[string]any)
	}
	e.Fields[field][locale] = v
}

// State returns the entry's publish state.
func (e *Entry) State() PublishState {
	switch {
	case e.PublishedVersion == 0:
		return Draft
	case e.Version == e.PublishedVersion+1:
		return Published
	default:
		return Changed
	}
}

// Clone returns a deep copy of e's bookkeeping and field maps.
// Field values themselves are shared.
func (e *Entry) Clone() *Entry {
	e2 := new(Entry)
	*e2 = *e
	if e.Fields != nil {
		e2.Fields = make(map[string]map[string]any, len(e.Fields))
		for field, locales := range e.Fields {
			m := make(map[string]any, len(locales))
			for locale, v := range locales {
				m[locale] = v
			}
			e2.Fields[field] = m
		}
	}
	return e2
}

// PublishState is an enumeration of entry publish states.
type PublishState int

const (
	// Draft entries have never been published.
	Draft PublishState = 1 + iota
	// Published entries have no changes since they were last published.
	Published
	// Changed entries were published, but have unpublished changes.
	Changed
)

// String returns the lowercase name of the state.
func (s PublishState) String() string {
	switch s {
	case Draft:
		return "draft"
	case Published:
		return "published"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("PublishState(%d)", int(s))
	}
}

// PublishPolicy determines whether an update is published.
type PublishPolicy int

const (
	// PublishPreserve publishes an update only if the entry
	// was published and up to date before the update,
	// so that the entry's publish state does not change.
	PublishPreserve PublishPolicy = iota
	// PublishNever saves the update without publishing.
	PublishNever
	// PublishAlways publishes the update.
	PublishAlways
)

// String returns the policy's name as used in configuration files.
func (p PublishPolicy) String() string {
	switch p {
	case PublishPreserve:
		return "preserve"
	case PublishNever:
		return "never"
	case PublishAlways:
		return "always"
	default:
		return fmt.Sprintf("PublishPolicy(%d)", int(p))
	}
}

// ParsePublishPolicy parses the name of a [PublishPolicy].
func ParsePublishPolicy(s string) (PublishPolicy, error) {
	switch s {
	case "preserve", "":
		return PublishPreserve, nil
	case "never":
		return PublishNever, nil
	case "always":
		return PublishAlways, nil
	default:
		return 0, fmt.Errorf("unknown publish policy %q", s)
	}
}

// ApplyUpdate copies update's fields into current
// and advances current's versions according to policy.
// update is not modified: stores copy the new versions into it
// with [Entry.SetVersions] once current has been saved.
// It returns [ErrVersionMismatch] if the entries' versions differ.
// Store implementations call ApplyUpdate while holding their write lock.
func ApplyUpdate(current, update *Entry, policy PublishPolicy) error {
	if current.Version != update.Version {
		return fmt.Errorf("update %s: read version %d, stored version %d: %w",
			update.ID, update.Version, current.Version, ErrVersionMismatch)
	}
	publish := false
	switch policy {
	case PublishPreserve:
		publish = current.State() == Published
	case PublishAlways:
		publish = true
	}

	current.Fields = update.Clone().Fields
	current.Version++
	if publish {
		current.PublishedVersion = current.Version
		current.Version++
	}
	return nil
}

// SetVersions copies saved's version bookkeeping into e.
func (e *Entry) SetVersions(saved *Entry) {
	e.Version = saved.Version
	e.PublishedVersion = saved.PublishedVersion
}
