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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
content_type = "promo"
locales = ["en-US", "fr-FR"]
workers = 8
writes_per_second = 7.5
dry_run = true
publish = "never"
max_unwrap_depth = 3

[store]
kind = "sqlite"
path = "content.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "promo", cfg.ContentType)
	assert.Equal(t, "heading", cfg.Field)
	assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.Locales)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 7.5, cfg.WritesPerSecond)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "never", cfg.Publish)
	assert.False(t, cfg.KeepWrapperAttributes)
	assert.Equal(t, 0, cfg.MaxDecodePasses)
	assert.Equal(t, 3, cfg.MaxUnwrapDepth)
	assert.Equal(t, StoreConfig{Kind: StoreSQLite, Path: "content.db"}, cfg.Store)
	assert.NoError(t, cfg.Validate())
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`workers = "four"`))
	assert.Error(t, err)

	_, err = Parse([]byte("colour = \"blue\"\n"))
	assert.ErrorContains(t, err, "unknown keys")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headingfix.toml")
	require.NoError(t, os.WriteFile(path, []byte("field = \"title\"\n"), 0o666))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "title", cfg.Field)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Store.Path = "export.json"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"NoContentType", func(c *Config) { c.ContentType = "" }, "content_type"},
		{"NoField", func(c *Config) { c.Field = "" }, "field"},
		{"NoWorkers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"NegativeRate", func(c *Config) { c.WritesPerSecond = -1 }, "writes_per_second"},
		{"BadPolicy", func(c *Config) { c.Publish = "sometimes" }, "publish policy"},
		{"BadLocale", func(c *Config) { c.Locales = []string{"not a locale"} }, "locale"},
		{"BadStoreKind", func(c *Config) { c.Store.Kind = "csv" }, "store kind"},
		{"NoStorePath", func(c *Config) { c.Store.Path = "" }, "store path"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), test.want)
		})
	}
}

func TestMatchLocales(t *testing.T) {
	available := []string{"en-US", "fr-FR", "de-DE"}

	got, err := MatchLocales(nil, available)
	require.NoError(t, err)
	assert.Equal(t, available, got)

	got, err = MatchLocales([]string{"de-de", "en-US"}, available)
	require.NoError(t, err)
	assert.Equal(t, []string{"de-DE", "en-US"}, got)

	_, err = MatchLocales([]string{"es-ES"}, available)
	assert.ErrorContains(t, err, "not found")

	_, err = MatchLocales([]string{"not a locale"}, available)
	assert.Error(t, err)
}
