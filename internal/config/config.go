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

// Package config loads the migration runner's TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"zombiezen.com/go/headingfix/internal/store"
)

// Store kinds.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config is the migration runner configuration.
type Config struct {
	// ContentType is the ID of the content type whose entries are migrated.
	ContentType string `toml:"content_type"`
	// Field is the ID of the heading field.
	Field string `toml:"field"`
	// Locales restricts the migration to the given locales.
	// If empty, every locale in the store is migrated.
	Locales []string `toml:"locales"`
	// Workers is the number of values canonicalized concurrently.
	Workers int `toml:"workers"`
	// WritesPerSecond limits the rate of entry updates.
	// Zero means unlimited.
	WritesPerSecond float64 `toml:"writes_per_second"`
	// DryRun reports changes without writing them.
	DryRun bool `toml:"dry_run"`
	// Publish is the publish policy: "preserve", "never", or "always".
	Publish string `toml:"publish"`

	KeepWrapperAttributes bool `toml:"keep_wrapper_attributes"`
	MaxDecodePasses       int  `toml:"max_decode_passes"`
	MaxUnwrapDepth        int  `toml:"max_unwrap_depth"`

	Store StoreConfig `toml:"store"`
}

// StoreConfig selects the content store.
type StoreConfig struct {
	// Kind is either "json" or "sqlite".
	Kind string `toml:"kind"`
	// Path is the export file or database path.
	Path string `toml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ContentType: "heroBannerFullImageBanking",
		Field:       "heading",
		Workers:     4,
		Publish:     store.PublishPreserve.String(),
		Store: StoreConfig{
			Kind: StoreJSON,
		},
	}
}

// Load reads a TOML configuration file.
// Keys not present in the file keep their default values.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses a TOML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("unknown keys:\n%s", strictErr.String())
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (cfg *Config) Validate() error {
	if cfg.ContentType == "" {
		return errors.New("content_type is required")
	}
	if cfg.Field == "" {
		return errors.New("field is required")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers = %d; must be at least 1", cfg.Workers)
	}
	if cfg.WritesPerSecond < 0 {
		return fmt.Errorf("writes_per_second = %g; must not be negative", cfg.WritesPerSecond)
	}
	if _, err := store.ParsePublishPolicy(cfg.Publish); err != nil {
		return err
	}
	for _, l := range cfg.Locales {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("locale %q: %w", l, err)
		}
	}
	switch cfg.Store.Kind {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
	if cfg.Store.Path == "" {
		return errors.New("store path is required")
	}
	return nil
}

// MatchLocales returns the codes in available that correspond to wanted.
// Codes are compared as BCP 47 language tags,
// so "en-us" matches a store locale "en-US".
// If wanted is empty, all available locales are returned.
func MatchLocales(wanted, available []string) ([]string, error) {
	if len(wanted) == 0 {
		return available, nil
	}
	byTag := make(map[language.Tag]string, len(available))
	for _, code := range available {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		byTag[tag] = code
	}
	matched := make([]string, 0, len(wanted))
	for _, w := range wanted {
		tag, err := language.Parse(w)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", w, err)
		}
		code, ok := byTag[tag]
		if !ok {
			return nil, fmt.Errorf("locale %q not found in store", w)
		}
		matched = append(matched, code)
	}
	return matched, nil
}
