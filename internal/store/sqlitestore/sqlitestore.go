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

// Package sqlitestore provides a [store.Store] backed by a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"zombiezen.com/go/headingfix/internal/store"
	"zombiezen.com/go/headingfix/internal/store/sqlitestore/migrations"
)

// Store is a content store backed by a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens the SQLite database at path, creating it if necessary,
// and applies any pending schema migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open content database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("open content database %s: %w", path, err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return fmt.Errorf("migrate: %s: bad version prefix", name)
		}
		if version <= current {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := s.apply(ctx, version, string(script)); err != nil {
			return fmt.Errorf("migrate: %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(ctx context.Context, version int, script string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// AddLocale records a locale.
func (s *Store) AddLocale(ctx context.Context, code string, isDefault bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locales (code, is_default, position)
		VALUES (?, ?, (SELECT COUNT(*) FROM locales))
		ON CONFLICT (code) DO UPDATE SET is_default = excluded.is_default
	`, code, isDefault)
	if err != nil {
		return fmt.Errorf("add locale %s: %w", code, err)
	}
	return nil
}

// Put inserts or replaces an entry as-is, without version checks.
// It is intended for importing content.
func (s *Store) Put(ctx context.Context, e *store.Entry) error {
	fields, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Errorf("put entry %s: %w", e.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (id, content_type, version, published_version, fields)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.ContentType, e.Version, e.PublishedVersion, string(fields))
	if err != nil {
		return fmt.Errorf("put entry %s: %w", e.ID, err)
	}
	return nil
}

// Locales returns the locale codes in insertion order.
func (s *Store) Locales(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code FROM locales ORDER BY position, code")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("list locales: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	return codes, nil
}

// Entries returns the entries of the given content type ordered by ID.
func (s *Store) Entries(ctx context.Context, contentType string) ([]*store.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_type, version, published_version, fields
		FROM entries
		WHERE content_type = ?
		ORDER BY id
	`, contentType)
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", contentType, err)
	}
	defer rows.Close()
	var result []*store.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s entries: %w", contentType, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s entries: %w", contentType, err)
	}
	return result, nil
}

// Entry returns the entry with the given ID.
func (s *Store) Entry(ctx context.Context, id string) (*store.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, content_type, version, published_version, fields
		FROM entries
		WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// Update saves an entry inside a transaction.
func (s *Store) Update(ctx context.Context, e *store.Entry, policy store.PublishPolicy) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	current, err := scanEntry(tx.QueryRowContext(ctx, `
		SELECT id, content_type, version, published_version, fields
		FROM entries
		WHERE id = ?
	`, e.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update %s: %w", e.ID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	readVersion := current.Version
	if err := store.ApplyUpdate(current, e, policy); err != nil {
		return err
	}
	fields, err := json.Marshal(current.Fields)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE entries
		SET version = ?, published_version = ?, fields = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`, current.Version, current.PublishedVersion, string(fields), e.ID, readVersion)
	if err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s: %w", e.ID, err)
	}
	e.SetVersions(current)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*store.Entry, error) {
	e := new(store.Entry)
	var fields string
	if err := row.Scan(&e.ID, &e.ContentType, &e.Version, &e.PublishedVersion, &fields); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(fields))
	dec.UseNumber()
	if err := dec.Decode(&e.Fields); err != nil {
		return nil, fmt.Errorf("entry %s: fields: %w", e.ID, err)
	}
	return e, nil
}
