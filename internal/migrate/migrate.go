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

// Package migrate rewrites the heading field of every entry in a content store
// into canonical form.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"zombiezen.com/go/headingfix"
	"zombiezen.com/go/headingfix/internal/store"
)

// DefaultSampleSize is the number of changed values
// recorded in a [Report] when Runner.SampleSize is zero.
const DefaultSampleSize = 5

// A Runner migrates one field of one content type.
type Runner struct {
	Store       store.Store
	ContentType string
	Field       string
	// Locales is the set of store locale codes to migrate.
	// If empty, every locale reported by the store is migrated.
	Locales []string
	// Workers is the number of values canonicalized concurrently.
	// Values less than 1 are treated as 1.
	Workers int
	// Limiter throttles entry updates. If nil, updates are not throttled.
	Limiter *rate.Limiter
	// If DryRun is true, changes are reported but not written.
	DryRun  bool
	Publish store.PublishPolicy
	// Canonicalizer rewrites values. If nil, default options are used.
	Canonicalizer *headingfix.Canonicalizer
	// Logger receives per-value and per-entry messages.
	// If nil, nothing is logged.
	Logger *zap.Logger
	// SampleSize bounds Report.Samples.
	// Zero means [DefaultSampleSize] and a negative value disables sampling.
	SampleSize int
}

// Outcome is the result of canonicalizing one value.
type Outcome struct {
	EntryID string
	Locale  string
	// Before is the stored value if it was a string.
	Before string
	Result headingfix.Result
}

// Report summarizes a run.
type Report struct {
	RunID string
	// Entries is the number of entries examined.
	Entries int
	// Values is the number of (entry, locale) values examined.
	Values    int
	Changed   int
	Unchanged int
	Opaque    int
	Invalid   int
	// Updated is the number of entries written back.
	Updated int
	// Failed is the number of entries whose update failed.
	Failed int
	// Samples holds the first changed values, in entry order.
	Samples []Outcome
	// Errors holds the update errors, one per failed entry.
	Errors []error
}

func (report *Report) add(o Outcome) {
	report.Values++
	switch {
	case o.Result.Changed:
		report.Changed++
	case o.Result.Skipped == headingfix.SkipOpaque:
		report.Opaque++
	case o.Result.Skipped == headingfix.SkipInvalidInput:
		report.Invalid++
	default:
		report.Unchanged++
	}
}

type job struct {
	entry  int
	locale string
	value  any
}

type jobResult struct {
	entry   int
	outcome Outcome
}

// Run canonicalizes every value of the field and writes back changed entries.
// Failing to update an entry does not stop the run:
// the failure is recorded in the report.
// Run returns an error if the store cannot be read
// or if ctx is canceled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	report := &Report{RunID: uuid.NewString()}
	log = log.With(zap.String("run", report.RunID))

	locales := r.Locales
	if len(locales) == 0 {
		var err error
		locales, err = r.Store.Locales(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrate %s.%s: %w", r.ContentType, r.Field, err)
		}
	}
	entries, err := r.Store.Entries(ctx, r.ContentType)
	if err != nil {
		return nil, fmt.Errorf("migrate %s.%s: %w", r.ContentType, r.Field, err)
	}
	report.Entries = len(entries)
	log.Info("Starting migration",
		zap.String("content_type", r.ContentType),
		zap.String("field", r.Field),
		zap.Strings("locales", locales),
		zap.Int("entries", len(entries)),
		zap.Bool("dry_run", r.DryRun))

	outcomes := r.canonicalizeAll(ctx, entries, locales)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("migrate %s.%s: %w", r.ContentType, r.Field, err)
	}

	sampleSize := r.SampleSize
	if sampleSize == 0 {
		sampleSize = DefaultSampleSize
	}
	for i, e := range entries {
		changed := false
		for _, o := range outcomes[i] {
			report.add(o)
			log.Debug("Canonicalized value",
				zap.String("entry", o.EntryID),
				zap.String("locale", o.Locale),
				zap.Bool("changed", o.Result.Changed),
				zap.String("skipped", string(o.Result.Skipped)),
				zap.Stringer("shape", o.Result.Diagnostics.Shape),
				zap.Int("decode_passes", o.Result.Diagnostics.DecodePasses),
				zap.Int("layers", o.Result.Diagnostics.Layers))
			if !o.Result.Changed {
				continue
			}
			changed = true
			e.SetValue(r.Field, o.Locale, o.Result.Value)
			if len(report.Samples) < sampleSize {
				report.Samples = append(report.Samples, o)
			}
		}
		if !changed || r.DryRun {
			continue
		}
		if err := r.update(ctx, e); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, fmt.Errorf("migrate %s.%s: %w", r.ContentType, r.Field, ctxErr)
			}
			log.Error("Update failed", zap.String("entry", e.ID), zap.Error(err))
			report.Failed++
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Updated++
		log.Debug("Updated entry",
			zap.String("entry", e.ID),
			zap.Stringer("state", e.State()),
			zap.Int("version", e.Version))
	}

	log.Info("Finished migration",
		zap.Int("values", report.Values),
		zap.Int("changed", report.Changed),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("opaque", report.Opaque),
		zap.Int("invalid", report.Invalid),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed))
	return report, nil
}

// canonicalizeAll fans the entries' values out to a pool of workers.
// The returned slice is indexed like entries,
// and each entry's outcomes are in locale order.
func (r *Runner) canonicalizeAll(ctx context.Context, entries []*store.Entry, locales []string) [][]Outcome {
	c := r.Canonicalizer
	if c == nil {
		c = new(headingfix.Canonicalizer)
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan job)
	results := make(chan jobResult)
	go func() {
		defer close(jobs)
		for i, e := range entries {
			for _, locale := range locales {
				v, ok := e.Value(r.Field, locale)
				if !ok {
					continue
				}
				select {
				case jobs <- job{entry: i, locale: locale, value: v}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				before, _ := j.value.(string)
				results <- jobResult{
					entry: j.entry,
					outcome: Outcome{
						EntryID: entries[j.entry].ID,
						Locale:  j.locale,
						Before:  before,
						Result:  c.CanonicalizeValue(j.value),
					},
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([][]Outcome, len(entries))
	for res := range results {
		outcomes[res.entry] = append(outcomes[res.entry], res.outcome)
	}
	for i := range outcomes {
		sortByLocale(outcomes[i], locales)
	}
	return outcomes
}

func (r *Runner) update(ctx context.Context, e *store.Entry) error {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("update %s: %w", e.ID, err)
		}
	}
	if err := r.Store.Update(ctx, e, r.Publish); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return fmt.Errorf("%w (entry modified during migration; rerun to retry)", err)
		}
		return err
	}
	return nil
}

// sortByLocale orders outcomes to match the order of locales.
func sortByLocale(outcomes []Outcome, locales []string) {
	rank := make(map[string]int, len(locales))
	for i, l := range locales {
		rank[l] = i
	}
	for i := 1; i < len(outcomes); i++ {
		for j := i; j > 0 && rank[outcomes[j].Locale] < rank[outcomes[j-1].Locale]; j-- {
			outcomes[j], outcomes[j-1] = outcomes[j-1], outcomes[j]
		}
	}
}
